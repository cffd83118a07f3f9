package views

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/market"
)

// CryptoIDs are the coins shown on the dashboard.
var CryptoIDs = []string{"bitcoin", "ethereum", "dogecoin"}

var cryptoNames = map[string]string{
	"bitcoin":  "Bitcoin (BTC)",
	"ethereum": "Ethereum (ETH)",
	"dogecoin": "Dogecoin (DOGE)",
}

type (
	CoinCard struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		PriceLabel  string  `json:"priceLabel"`
		Change24h   float64 `json:"change24h"`
		ChangeLabel string  `json:"changeLabel"`
		Direction   string  `json:"direction"` // up, down or flat
	}

	ChartPoint struct {
		DateLabel string  `json:"dateLabel"`
		Price     float64 `json:"price"`
	}

	CryptoView struct {
		EmptyState
		Coins      []CoinCard   `json:"coins"`
		ChartTitle string       `json:"chartTitle"`
		Chart      []ChartPoint `json:"chart"`
	}

	InflationView struct {
		EmptyState
		Country     string             `json:"country"`
		LatestYear  int                `json:"latestYear,omitempty"`
		LatestValue float64            `json:"latestValue"`
		LatestLabel string             `json:"latestLabel,omitempty"`
		Series      []market.YearValue `json:"series"`
	}
)

// Crypto shapes price cards and the price chart. Either input may be empty
// when its lookup failed; the view is empty only when both are.
func Crypto(prices []market.CoinPrice, chart []market.PricePoint) CryptoView {
	v := CryptoView{
		Coins:      make([]CoinCard, 0, len(prices)),
		ChartTitle: "Bitcoin price (last 30 days)",
		Chart:      make([]ChartPoint, 0, len(chart)),
	}
	for _, p := range prices {
		if p.ID == "" {
			continue
		}
		name, ok := cryptoNames[p.ID]
		if !ok {
			name = strings.ToUpper(p.ID[:1]) + p.ID[1:]
		}
		v.Coins = append(v.Coins, CoinCard{
			ID:          p.ID,
			Name:        name,
			Price:       p.Price,
			PriceLabel:  core.FormatUSD(decimal.NewFromFloat(p.Price)),
			Change24h:   p.Change24h,
			ChangeLabel: signedPercent(p.Change24h),
			Direction:   direction(p.Change24h),
		})
	}
	for _, pt := range chart {
		v.Chart = append(v.Chart, ChartPoint{DateLabel: pt.Time.Format("Jan 2"), Price: pt.Price})
	}
	v.EmptyState = emptyIf(len(v.Coins) == 0 && len(v.Chart) == 0, NoData)
	return v
}

func Inflation(inf market.Inflation) InflationView {
	v := InflationView{Country: inf.Country, Series: inf.Series}
	if v.Series == nil {
		v.Series = []market.YearValue{}
	}
	if inf.Latest == nil {
		v.EmptyState = emptyIf(true, NoData)
		return v
	}
	v.LatestYear = inf.Latest.Year
	v.LatestValue = inf.Latest.Value
	v.LatestLabel = decimal.NewFromFloat(inf.Latest.Value).StringFixed(2) + "%"
	return v
}

func signedPercent(p float64) string {
	s := decimal.NewFromFloat(p).StringFixed(2) + "%"
	if p > 0 {
		return "+" + s
	}
	return s
}

func direction(p float64) string {
	switch {
	case p > 0:
		return "up"
	case p < 0:
		return "down"
	default:
		return "flat"
	}
}
