package views

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/filter"
)

type (
	BarPoint struct {
		Month   string  `json:"month"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Net     float64 `json:"net"`
	}

	BarView struct {
		EmptyState
		Title      string          `json:"title"`
		Subtitle   string          `json:"subtitle"`
		Range      string          `json:"range"`
		Series     []BarPoint      `json:"series"`
		TopIncome  []CategorySlice `json:"topIncome"`
		TopExpense []CategorySlice `json:"topExpense"`
	}

	DonutView struct {
		EmptyState
		Title  string          `json:"title"`
		Type   core.TxType     `json:"type"`
		Total  Amount          `json:"total"`
		Slices []CategorySlice `json:"slices"`
	}

	NetWorthPoint struct {
		Month  string  `json:"month"`
		Value  float64 `json:"value"`
		Label  string  `json:"label"`
		Change float64 `json:"change"`
	}

	NetWorthView struct {
		EmptyState
		Title    string          `json:"title"`
		Subtitle string          `json:"subtitle"`
		Points   []NetWorthPoint `json:"points"`
		Current  Amount          `json:"current"`
	}
)

// Bar charts monthly income against expense for the selected range, oldest
// month first, with the top five categories of each type.
func Bar(groups []core.MonthGroup, r filter.Range, now time.Time) BarView {
	scoped := filter.ByRange(groups, r, now)
	v := BarView{
		Title:      "Monthly Income vs Expense",
		Subtitle:   "Overview of your cashflow",
		Range:      r.String(),
		Series:     []BarPoint{},
		TopIncome:  []CategorySlice{},
		TopExpense: []CategorySlice{},
	}
	if r > 0 {
		v.Subtitle = "Last " + r.String() + " months"
	}

	if len(scoped) == 0 || allZero(scoped) {
		reason := NoData
		if len(groups) > 0 {
			reason = NoMatch
		}
		v.EmptyState = emptyIf(true, reason)
		return v
	}

	for _, row := range aggregate.MonthlyRollups(scoped) {
		v.Series = append(v.Series, BarPoint{
			Month:   row.Month,
			Income:  core.Float(row.Income),
			Expense: core.Float(row.Expense),
			Net:     core.Float(row.Net),
		})
	}
	v.TopIncome = slices(aggregate.TopCategories(aggregate.ComputeCategoryTotals(scoped, core.Income), aggregate.DefaultTopN))
	v.TopExpense = slices(aggregate.TopCategories(aggregate.ComputeCategoryTotals(scoped, core.Expense), aggregate.DefaultTopN))
	return v
}

// Donut breaks one transaction type down by category.
func Donut(groups []core.MonthGroup, txType core.TxType) DonutView {
	totals := aggregate.ComputeCategoryTotals(groups, txType)
	v := DonutView{
		Title:  "Expense Breakdown",
		Type:   txType,
		Total:  amount(totals.GrandTotal),
		Slices: slices(totals.Entries()),
	}
	if txType == core.Income {
		v.Title = "Income Breakdown"
	}
	v.EmptyState = emptyIf(totals.Len() == 0 || totals.GrandTotal.IsZero(), NoData)
	return v
}

// NetWorth plots the running net total, oldest first.
func NetWorth(groups []core.MonthGroup) NetWorthView {
	v := NetWorthView{
		Title:    "Cumulative Net Worth",
		Subtitle: "Income - Expense over time",
		Points:   []NetWorthPoint{},
	}
	prev := decimal.Zero
	for _, p := range aggregate.CumulativeNetWorth(groups) {
		v.Points = append(v.Points, NetWorthPoint{
			Month:  p.Month,
			Value:  core.Float(p.CumulativeNet),
			Label:  core.FormatUSD(p.CumulativeNet),
			Change: core.Float(p.CumulativeNet.Sub(prev)),
		})
		prev = p.CumulativeNet
	}
	v.Current = amount(prev)
	v.EmptyState = emptyIf(len(groups) == 0 || allZero(groups), NoData)
	return v
}
