package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const monthLabelLayout = "Jan 2006"

var monthLabelLayouts = []string{"Jan 2006", "January 2006", "2006-01", "01/2006", "Jan 06"}

var yearlessLayouts = []string{"Jan", "January"}

// MonthLabel formats the month of t as used by MonthGroup labels.
func MonthLabel(t time.Time) string {
	return t.Format(monthLabelLayout)
}

// ParseMonthLabel returns the first day of the labelled month at midnight UTC.
// Labels without a year do not parse.
func ParseMonthLabel(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	for _, layout := range monthLabelLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthOrdinal returns a sortable key for a label. Year-less labels such as
// "Feb" order by month alone.
func MonthOrdinal(label string) (int, bool) {
	if t, ok := ParseMonthLabel(label); ok {
		return t.Year()*12 + int(t.Month()) - 1, true
	}
	label = strings.TrimSpace(label)
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return int(t.Month()) - 1, true
		}
	}
	return 0, false
}

// SameMonth compares labels by the month they denote, falling back to an
// exact, case-insensitive string match for labels that do not parse.
func SameMonth(a, b string) bool {
	ta, okA := ParseMonthLabel(a)
	tb, okB := ParseMonthLabel(b)
	if okA && okB {
		return ta.Equal(tb)
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SortChronological returns a copy ordered oldest to newest. When any label
// lacks an ordinal, or year-less labels are mixed with dated ones, the input
// is assumed newest-first and reversed.
func SortChronological(groups []MonthGroup) []MonthGroup {
	out := make([]MonthGroup, len(groups))
	copy(out, groups)

	keys := make([]int, len(out))
	dated, yearless := false, false
	for i, g := range out {
		k, ok := MonthOrdinal(g.Month)
		if !ok {
			return reversed(out)
		}
		if _, full := ParseMonthLabel(g.Month); full {
			dated = true
		} else {
			yearless = true
		}
		keys[i] = k
	}
	if dated && yearless {
		return reversed(out)
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	sorted := make([]MonthGroup, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func reversed(groups []MonthGroup) []MonthGroup {
	for l, r := 0, len(groups)-1; l < r; l, r = l+1, r-1 {
		groups[l], groups[r] = groups[r], groups[l]
	}
	return groups
}

// maxCutoffMonths bounds RangeCutoff so AddDate cannot overflow.
const maxCutoffMonths = 12 * 10000

// RangeCutoff returns the first day of the month n-1 months before now, at
// midnight in now's location. n below 1 is treated as 1 and very large n is
// clamped.
func RangeCutoff(now time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	if n > maxCutoffMonths {
		n = maxCutoffMonths
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(n - 1), 0)
}

// GroupByMonth buckets transactions into newest-first MonthGroups with
// computed totals. Transactions inside a month are newest first.
func GroupByMonth(txs []Transaction) []MonthGroup {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date.Time) })

	var groups []MonthGroup
	index := map[string]int{}
	for _, tx := range sorted {
		label := MonthLabel(tx.Date.Time)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MonthGroup{Month: label})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	for i := range groups {
		income, expense := SumByType(groups[i].Transactions)
		groups[i].TotalIncome = decimal.NewNullDecimal(income)
		groups[i].TotalExpense = decimal.NewNullDecimal(expense)
	}
	return groups
}
