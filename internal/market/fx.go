package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// FXClient talks to a `/currency/rate?base=USD&symbols=INR` endpoint returning
// {base, date, rates: {INR: 83.21}}.
type FXClient struct {
	client
}

func NewFXClient(baseURL string, hc *http.Client) *FXClient {
	return &FXClient{client: newClient(strings.TrimRight(baseURL, "/"), hc)}
}

func (c *FXClient) Rate(ctx context.Context, base, symbol string) (Rate, error) {
	base, symbol = strings.ToUpper(base), strings.ToUpper(symbol)
	var body struct {
		Base  string             `json:"base"`
		Date  string             `json:"date"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := c.getJSON(ctx, "/currency/rate", map[string]string{"base": base, "symbols": symbol}, &body); err != nil {
		return Rate{}, err
	}
	v, ok := body.Rates[symbol]
	if !ok || v <= 0 {
		return Rate{}, fmt.Errorf("rate %s/%s: %w", base, symbol, ErrUnavailable)
	}
	return Rate{Base: base, Symbol: symbol, Value: v, Date: body.Date}, nil
}
