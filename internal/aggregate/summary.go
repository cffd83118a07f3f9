// Package aggregate derives the rollups behind every chart and summary card
// from newest-first MonthGroups. All functions are pure.
package aggregate

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type (
	// MonthNet is a labelled monthly net. A nil *MonthNet means "no month".
	MonthNet struct {
		Month string          `json:"month"`
		Net   decimal.Decimal `json:"net"`
	}

	Summary struct {
		TotalIncome     decimal.Decimal `json:"totalIncome"`
		TotalExpense    decimal.Decimal `json:"totalExpense"`
		CurrentNetWorth decimal.Decimal `json:"currentNetWorth"`
		ThisMonth       *MonthNet       `json:"thisMonth"`
		LastMonth       *MonthNet       `json:"lastMonth"`
		BestMonth       *MonthNet       `json:"bestMonth"`
		WorstMonth      *MonthNet       `json:"worstMonth"`
	}

	MonthlyRollup struct {
		Month   string          `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Net     decimal.Decimal `json:"net"`
	}

	NetWorthPoint struct {
		Month         string          `json:"month"`
		CumulativeNet decimal.Decimal `json:"cumulativeNet"`
	}
)

// GlobalSummary totals every group and finds the best and worst month in
// input order; the first month reaching an extreme keeps it. This and last
// month are the two most recent groups by calendar order, not by position.
func GlobalSummary(groups []core.MonthGroup) Summary {
	var s Summary
	for _, g := range groups {
		income, expense := g.Totals()
		net := income.Sub(expense)
		s.TotalIncome = s.TotalIncome.Add(income)
		s.TotalExpense = s.TotalExpense.Add(expense)

		if s.BestMonth == nil || net.GreaterThan(s.BestMonth.Net) {
			s.BestMonth = &MonthNet{Month: g.Month, Net: net}
		}
		if s.WorstMonth == nil || net.LessThan(s.WorstMonth.Net) {
			s.WorstMonth = &MonthNet{Month: g.Month, Net: net}
		}
	}
	s.CurrentNetWorth = s.TotalIncome.Sub(s.TotalExpense)

	chrono := core.SortChronological(groups)
	if n := len(chrono); n > 0 {
		s.ThisMonth = &MonthNet{Month: chrono[n-1].Month, Net: chrono[n-1].Net()}
		if n > 1 {
			s.LastMonth = &MonthNet{Month: chrono[n-2].Month, Net: chrono[n-2].Net()}
		}
	}
	return s
}

// MonthlyRollups returns one row per group, oldest first. Months without
// transactions still produce a zero row.
func MonthlyRollups(groups []core.MonthGroup) []MonthlyRollup {
	chrono := core.SortChronological(groups)
	out := make([]MonthlyRollup, 0, len(chrono))
	for _, g := range chrono {
		income, expense := g.Totals()
		out = append(out, MonthlyRollup{
			Month:   g.Month,
			Income:  income,
			Expense: expense,
			Net:     income.Sub(expense),
		})
	}
	return out
}

// CumulativeNetWorth is the running total of monthly net, oldest first.
func CumulativeNetWorth(groups []core.MonthGroup) []NetWorthPoint {
	chrono := core.SortChronological(groups)
	out := make([]NetWorthPoint, 0, len(chrono))
	running := decimal.Zero
	for _, g := range chrono {
		running = running.Add(g.Net())
		out = append(out, NetWorthPoint{Month: g.Month, CumulativeNet: running})
	}
	return out
}
