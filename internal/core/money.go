package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// LenientDecimal decodes a JSON number or numeric string. Anything else
// (absent, null, garbage) yields zero.
func LenientDecimal(raw json.RawMessage) decimal.Decimal {
	d, ok := parseJSONDecimal(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

func lenientNullDecimal(raw json.RawMessage) decimal.NullDecimal {
	d, ok := parseJSONDecimal(raw)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func parseJSONDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
	}
	return ParseAmount(s)
}

// groupedAmount matches comma thousands grouping such as 1,234 or 12,500.75.
var groupedAmount = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseAmount parses a user or sheet supplied amount in USD notation: an
// optional sign and "$", with commas only as thousands separators. Anything
// else, including "1,23", is rejected rather than rescaled.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	if neg {
		s = "-" + s
	}
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		if !groupedAmount.MatchString(s) {
			return decimal.Zero, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatUSD renders an amount like $1,234.56 or -$1,234.56.
func FormatUSD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + FormatAmount(d.Neg())
	}
	return "$" + FormatAmount(d)
}

// FormatAmount renders two decimals with thousands separators and no symbol.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// Float converts for chart series. Values are already rounded to cents upstream.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
