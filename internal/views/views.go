// Package views shapes engine output into chart-ready view models. Builders
// hold no business logic of their own beyond labels and empty states.
package views

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// Empty-state reasons. NoData means there is nothing recorded at all;
// NoMatch means filters removed everything.
const (
	NoData  = "no-data"
	NoMatch = "no-match"
)

type EmptyState struct {
	Empty       bool   `json:"empty"`
	EmptyReason string `json:"emptyReason,omitempty"`
}

func emptyIf(cond bool, reason string) EmptyState {
	if !cond {
		return EmptyState{}
	}
	return EmptyState{Empty: true, EmptyReason: reason}
}

// Amount is a money value for charts plus its display string.
type Amount struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

func amount(d decimal.Decimal) Amount {
	return Amount{Value: core.Float(d), Label: core.FormatUSD(d)}
}

type MonthAmount struct {
	Month string `json:"month"`
	Amount
}

func monthAmount(m *aggregate.MonthNet) *MonthAmount {
	if m == nil {
		return nil
	}
	return &MonthAmount{Month: m.Month, Amount: amount(m.Net)}
}

type CategorySlice struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
	Tooltip    string  `json:"tooltip"`
}

func slices(entries []aggregate.CategoryTotal) []CategorySlice {
	out := make([]CategorySlice, 0, len(entries))
	for _, e := range entries {
		out = append(out, CategorySlice{
			Name:       e.Name,
			Value:      core.Float(e.Amount),
			Label:      core.FormatUSD(e.Amount),
			Percentage: e.Percentage,
			Tooltip:    e.Name + ": " + core.FormatUSD(e.Amount) + " (" + formatPercent(e.Percentage) + ")",
		})
	}
	return out
}

func formatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// allZero reports whether no group carries any income or expense.
func allZero(groups []core.MonthGroup) bool {
	for _, g := range groups {
		income, expense := g.Totals()
		if !income.IsZero() || !expense.IsZero() {
			return false
		}
	}
	return true
}
