package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CoinGeckoClient covers the two public CoinGecko endpoints the dashboard uses.
type CoinGeckoClient struct {
	client
}

func NewCoinGeckoClient(baseURL string, hc *http.Client) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoClient{client: newClient(strings.TrimRight(baseURL, "/"), hc)}
}

// Prices returns USD prices for ids in the order requested. Ids missing from
// the response are skipped.
func (c *CoinGeckoClient) Prices(ctx context.Context, ids []string) ([]CoinPrice, error) {
	var body map[string]map[string]float64
	q := map[string]string{
		"ids":                 strings.Join(ids, ","),
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
	}
	if err := c.getJSON(ctx, "/simple/price", q, &body); err != nil {
		return nil, err
	}
	out := make([]CoinPrice, 0, len(ids))
	for _, id := range ids {
		quote, ok := body[id]
		if !ok {
			continue
		}
		out = append(out, CoinPrice{ID: id, Price: quote["usd"], Change24h: quote["usd_24h_change"]})
	}
	return out, nil
}

// MarketChart returns daily USD prices for the last days days.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, id string, days int) ([]PricePoint, error) {
	var body struct {
		Prices [][2]float64 `json:"prices"`
	}
	q := map[string]string{"vs_currency": "usd", "days": strconv.Itoa(days), "interval": "daily"}
	if err := c.getJSON(ctx, fmt.Sprintf("/coins/%s/market_chart", id), q, &body); err != nil {
		return nil, err
	}
	out := make([]PricePoint, 0, len(body.Prices))
	for _, p := range body.Prices {
		out = append(out, PricePoint{Time: time.UnixMilli(int64(p[0])).UTC(), Price: p[1]})
	}
	return out, nil
}
