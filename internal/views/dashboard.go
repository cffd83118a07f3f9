package views

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/market"
)

// SupportedCurrencies are the display currencies offered next to USD.
var SupportedCurrencies = []string{"INR", "EUR", "GBP", "JPY", "AUD", "CAD"}

func IsSupportedCurrency(c string) bool {
	for _, s := range SupportedCurrencies {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}

type (
	DashboardView struct {
		EmptyState
		TotalIncome     Amount        `json:"totalIncome"`
		TotalExpense    Amount        `json:"totalExpense"`
		CurrentNetWorth Amount        `json:"currentNetWorth"`
		ThisMonth       *MonthAmount  `json:"thisMonth"`
		LastMonth       *MonthAmount  `json:"lastMonth"`
		BestMonth       *MonthAmount  `json:"bestMonth"`
		WorstMonth      *MonthAmount  `json:"worstMonth"`
		Snapshot        *SnapshotCard `json:"snapshot"`
		Currency        CurrencyCard  `json:"currency"`
	}

	SnapshotCard struct {
		Month       string          `json:"month"`
		Income      Amount          `json:"income"`
		Expense     Amount          `json:"expense"`
		Net         Amount          `json:"net"`
		TopExpenses []CategorySlice `json:"topExpenses"`
	}

	// CurrencyCard converts the net worth into the selected display currency.
	// Without a rate the converted value is 0.
	CurrencyCard struct {
		Base      string  `json:"base"`
		Target    string  `json:"target"`
		Available bool    `json:"available"`
		Rate      float64 `json:"rate,omitempty"`
		RateLabel string  `json:"rateLabel,omitempty"`
		NetWorth  float64 `json:"convertedNetWorth"`
	}
)

// Dashboard builds the summary cards. rate may be nil when the FX lookup
// failed or was not requested.
func Dashboard(groups []core.MonthGroup, target string, rate *market.Rate) DashboardView {
	s := aggregate.GlobalSummary(groups)
	v := DashboardView{
		EmptyState:      emptyIf(len(groups) == 0 || allZero(groups), NoData),
		TotalIncome:     amount(s.TotalIncome),
		TotalExpense:    amount(s.TotalExpense),
		CurrentNetWorth: amount(s.CurrentNetWorth),
		ThisMonth:       monthAmount(s.ThisMonth),
		LastMonth:       monthAmount(s.LastMonth),
		BestMonth:       monthAmount(s.BestMonth),
		WorstMonth:      monthAmount(s.WorstMonth),
		Currency:        currencyCard(s.CurrentNetWorth, target, rate),
	}
	if snap, ok := aggregate.MonthlySnapshot(groups); ok {
		v.Snapshot = &SnapshotCard{
			Month:       snap.Month,
			Income:      amount(snap.Income),
			Expense:     amount(snap.Expense),
			Net:         amount(snap.Net),
			TopExpenses: slices(snap.TopCategories),
		}
	}
	return v
}

func currencyCard(netWorth decimal.Decimal, target string, rate *market.Rate) CurrencyCard {
	card := CurrencyCard{Base: "USD", Target: strings.ToUpper(target)}
	if rate == nil || rate.Value <= 0 {
		return card
	}
	card.Available = true
	card.Rate = rate.Value
	card.RateLabel = "1 USD = " + decimal.NewFromFloat(rate.Value).StringFixed(4) + " " + card.Target
	card.NetWorth = core.Float(netWorth.Mul(decimal.NewFromFloat(rate.Value)).Round(2))
	return card
}
