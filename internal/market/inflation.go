package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

const cpiIndicator = "FP.CPI.TOTL.ZG"

// WorldBankClient reads annual consumer price inflation.
type WorldBankClient struct {
	client
}

func NewWorldBankClient(baseURL string, hc *http.Client) *WorldBankClient {
	if baseURL == "" {
		baseURL = DefaultWorldBankURL
	}
	return &WorldBankClient{client: newClient(strings.TrimRight(baseURL, "/"), hc)}
}

// Inflation returns the series oldest first and the most recent year with a
// value. Latest is nil when the country has no data.
func (c *WorldBankClient) Inflation(ctx context.Context, country string) (Inflation, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	// the API answers [pagination, rows]
	var body []jsonRows
	path := fmt.Sprintf("/country/%s/indicator/%s", country, cpiIndicator)
	if err := c.getJSON(ctx, path, map[string]string{"format": "json", "per_page": "60"}, &body); err != nil {
		return Inflation{}, err
	}

	out := Inflation{Country: country, Series: []YearValue{}}
	if len(body) < 2 {
		return out, nil
	}
	for _, row := range body[1].rows {
		if row.Value == nil {
			continue
		}
		year, err := strconv.Atoi(row.Date)
		if err != nil {
			continue
		}
		out.Series = append(out.Series, YearValue{Year: year, Value: *row.Value})
	}
	sort.Slice(out.Series, func(i, j int) bool { return out.Series[i].Year < out.Series[j].Year })
	if n := len(out.Series); n > 0 {
		latest := out.Series[n-1]
		out.Latest = &latest
	}
	return out, nil
}

type worldBankRow struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// jsonRows decodes the second array element and ignores the pagination object.
type jsonRows struct {
	rows []worldBankRow
}

func (r *jsonRows) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &r.rows)
	}
	return nil
}
