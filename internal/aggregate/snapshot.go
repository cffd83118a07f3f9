package aggregate

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const snapshotTopN = 3

type Snapshot struct {
	Month         string          `json:"month"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
	Net           decimal.Decimal `json:"net"`
	TopCategories []CategoryTotal `json:"topCategories"`
}

// MonthlySnapshot describes the most recent month. Category percentages are
// relative to that month's expense total. ok is false for empty input.
func MonthlySnapshot(groups []core.MonthGroup) (Snapshot, bool) {
	if len(groups) == 0 {
		return Snapshot{}, false
	}
	chrono := core.SortChronological(groups)
	latest := chrono[len(chrono)-1]

	income, expense := latest.Totals()
	ct := CategoryTotals{Type: core.Expense, amounts: map[string]decimal.Decimal{}}
	ct.addAll(latest.Transactions)
	// share of the month's expense, which may differ from the row sum
	ct.GrandTotal = expense

	return Snapshot{
		Month:         latest.Month,
		Income:        income,
		Expense:       expense,
		Net:           income.Sub(expense),
		TopCategories: TopCategories(ct, snapshotTopN),
	}, true
}
