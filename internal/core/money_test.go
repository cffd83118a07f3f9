package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "0", false},
		{"1,234", "1234", true},
		{"12,500", "12500", true},
		{"1,234.50", "1234.5", true},
		{"$1,234.50", "1234.5", true},
		{"-$1,234.56", "-1234.56", true},
		{"1,234,567.89", "1234567.89", true},
		{"12,50", "0", false},
		{"1,2345", "0", false},
		{",500", "0", false},
		{" $2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"abc", "0", false},
		{"1.2.3", "0", false},
		{"", "0", false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if ok && !got.Equal(decimal.RequireFromString(tc.out)) {
			t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
		}
	}
}

func TestLenientDecimal(t *testing.T) {
	cases := map[string]string{
		`12`:       "12",
		`"12.75"`:  "12.75",
		`null`:     "0",
		``:         "0",
		`true`:     "0",
		`"x"`:      "0",
		`"$2,500"`: "2500",
		`"2,5"`:    "0",
	}
	for in, want := range cases {
		if got := LenientDecimal(json.RawMessage(in)); !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%q expected %s, got %s", in, want, got)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-250", "-$250.00"},
		{"-1234.56", "-$1,234.56"},
	}
	for _, tc := range cases {
		if got := FormatUSD(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Fatalf("%s expected %s, got %s", tc.in, tc.out, got)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewFromInt(50), decimal.NewFromInt(80)); got != 62.5 {
		t.Fatalf("expected 62.5, got %v", got)
	}
	if got := Percent(decimal.NewFromInt(1), decimal.NewFromInt(3)); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Percent(decimal.NewFromInt(10), decimal.Zero); got != 0 {
		t.Fatalf("expected 0 on zero whole, got %v", got)
	}
}
