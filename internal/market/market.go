// Package market fetches display-only data from third-party services:
// exchange rates, crypto prices and inflation series.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultWorldBankURL = "https://api.worldbank.org/v2"
	DefaultTimeout      = 10 * time.Second
)

var ErrUnavailable = errors.New("market data unavailable")

type (
	// Rate is the price of one unit of Base in Symbol.
	Rate struct {
		Base   string  `json:"base"`
		Symbol string  `json:"symbol"`
		Value  float64 `json:"value"`
		Date   string  `json:"date,omitempty"`
	}

	CoinPrice struct {
		ID        string  `json:"id"`
		Price     float64 `json:"price"`
		Change24h float64 `json:"change24h"`
	}

	PricePoint struct {
		Time  time.Time `json:"time"`
		Price float64   `json:"price"`
	}

	YearValue struct {
		Year  int     `json:"year"`
		Value float64 `json:"value"`
	}

	Inflation struct {
		Country string      `json:"country"`
		Latest  *YearValue  `json:"latest"`
		Series  []YearValue `json:"series"`
	}
)

// client is the shared GET+decode plumbing of every market client.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, hc *http.Client) client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return client{baseURL: baseURL, http: hc}
}

func (c client) getJSON(ctx context.Context, path string, query map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d: %s: %w", path, resp.StatusCode, body, ErrUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
