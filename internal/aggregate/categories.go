package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const DefaultTopN = 5

type (
	CategoryTotal struct {
		Name       string          `json:"name"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage float64         `json:"percentage"`
	}

	// CategoryTotals maps category name to amount and remembers the order in
	// which names were first seen.
	CategoryTotals struct {
		Type       core.TxType
		GrandTotal decimal.Decimal
		order      []string
		amounts    map[string]decimal.Decimal
	}
)

// ComputeCategoryTotals sums every transaction of txType by category name.
func ComputeCategoryTotals(groups []core.MonthGroup, txType core.TxType) CategoryTotals {
	ct := CategoryTotals{Type: txType, amounts: map[string]decimal.Decimal{}}
	for _, g := range groups {
		ct.addAll(g.Transactions)
	}
	return ct
}

func (ct *CategoryTotals) addAll(txs []core.Transaction) {
	for _, tx := range txs {
		if tx.Type != ct.Type {
			continue
		}
		name := tx.CategoryName()
		if _, seen := ct.amounts[name]; !seen {
			ct.order = append(ct.order, name)
		}
		ct.amounts[name] = ct.amounts[name].Add(tx.Amount)
		ct.GrandTotal = ct.GrandTotal.Add(tx.Amount)
	}
}

// Amount returns the total for name, zero when absent.
func (ct CategoryTotals) Amount(name string) decimal.Decimal {
	return ct.amounts[name]
}

func (ct CategoryTotals) Len() int { return len(ct.order) }

// Entries lists categories in first-seen order with their share of the
// grand total.
func (ct CategoryTotals) Entries() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(ct.order))
	for _, name := range ct.order {
		amount := ct.amounts[name]
		out = append(out, CategoryTotal{
			Name:       name,
			Amount:     amount,
			Percentage: core.Percent(amount, ct.GrandTotal),
		})
	}
	return out
}

// TopCategories returns at most n entries by amount, largest first. Ties
// keep first-seen order. n <= 0 means DefaultTopN.
func TopCategories(ct CategoryTotals, n int) []CategoryTotal {
	if n <= 0 {
		n = DefaultTopN
	}
	entries := ct.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
