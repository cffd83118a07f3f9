package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// columns maps each wanted header to its index in the header row.
func columns(header []string, want []string) (map[string]int, error) {
	idx := make(map[string]int, len(want))
	var missing []string
	for _, w := range want {
		i := indexOf(header, w)
		if i == -1 {
			missing = append(missing, w)
			continue
		}
		idx[w] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), header)
	}
	return idx, nil
}

// parseTransactions turns a values matrix whose first row is the header into
// transactions. Rows without an id or a readable date are skipped; a bad
// amount reads as zero.
func parseTransactions(values [][]any) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, nil
	}
	col, err := columns(toStrings(values[0]), transactionHeaders)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, raw := range values[1:] {
		row := toStrings(raw)
		id := safeGet(row, col["ID"])
		if id == "" {
			continue
		}
		date, err := core.ParseDate(safeGet(row, col["Date"]))
		if err != nil {
			continue
		}
		amount, _ := core.ParseAmount(safeGet(row, col["Amount"]))
		out = append(out, core.Transaction{
			ID:         id,
			Date:       date,
			Type:       core.TxType(strings.ToLower(safeGet(row, col["Type"]))),
			Amount:     amount,
			CategoryID: safeGet(row, col["Category"]),
			Note:       safeGet(row, col["Note"]),
		})
	}
	return out, nil
}

func parseCategories(values [][]any) ([]core.Category, error) {
	if len(values) == 0 {
		return nil, nil
	}
	col, err := columns(toStrings(values[0]), []string{"ID", "Name", "Type"})
	if err != nil {
		return nil, err
	}
	iconCol := indexOf(toStrings(values[0]), "Icon")
	var out []core.Category
	seen := map[string]struct{}{}
	for _, raw := range values[1:] {
		row := toStrings(raw)
		id := safeGet(row, col["ID"])
		name := safeGet(row, col["Name"])
		if id == "" || name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, core.Category{
			ID:   id,
			Name: name,
			Type: core.TxType(strings.ToLower(safeGet(row, col["Type"]))),
			Icon: safeGet(row, iconCol),
		})
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		// Sheets hands back unformatted numbers as float64
		if f, ok := v.(float64); ok {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
