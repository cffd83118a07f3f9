package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseMonthLabel(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"Dec 2025", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"December 2025", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"03/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{" Jan 2024 ", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"Jan", time.Time{}, false},
		{"not a month", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseMonthLabel(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v", tc.in, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestMonthOrdinal(t *testing.T) {
	jan, _ := MonthOrdinal("Jan 2024")
	dec, _ := MonthOrdinal("Dec 2023")
	if !(dec < jan) {
		t.Fatalf("Dec 2023 should order before Jan 2024")
	}
	feb, ok := MonthOrdinal("Feb")
	if !ok || feb != 1 {
		t.Fatalf("year-less label should order by month, got %d %v", feb, ok)
	}
	if _, ok := MonthOrdinal("???"); ok {
		t.Fatalf("garbage should not yield an ordinal")
	}
}

func TestSortChronological(t *testing.T) {
	in := []MonthGroup{{Month: "Mar 2024"}, {Month: "Jan 2024"}, {Month: "Dec 2023"}, {Month: "Feb 2024"}}
	got := SortChronological(in)
	want := []string{"Dec 2023", "Jan 2024", "Feb 2024", "Mar 2024"}
	for i, w := range want {
		if got[i].Month != w {
			t.Fatalf("position %d expected %s, got %s", i, w, got[i].Month)
		}
	}
	if in[0].Month != "Mar 2024" {
		t.Fatalf("input must not be mutated")
	}

	// unparseable labels: assume newest-first and reverse
	odd := []MonthGroup{{Month: "latest"}, {Month: "Jan 2024"}, {Month: "older"}}
	got = SortChronological(odd)
	if got[0].Month != "older" || got[2].Month != "latest" {
		t.Fatalf("expected reversed order, got %v", got)
	}

	yearless := SortChronological([]MonthGroup{{Month: "Mar"}, {Month: "Jan"}, {Month: "Feb"}})
	if yearless[0].Month != "Jan" || yearless[2].Month != "Mar" {
		t.Fatalf("year-less labels should sort by month, got %v", yearless)
	}

	// mixed label kinds have no common ordering: reverse newest-first input
	mixed := SortChronological([]MonthGroup{{Month: "Jan 2024"}, {Month: "Dec"}, {Month: "Nov 2023"}})
	if mixed[0].Month != "Nov 2023" || mixed[1].Month != "Dec" || mixed[2].Month != "Jan 2024" {
		t.Fatalf("expected reversed order for mixed labels, got %v", mixed)
	}

	if len(SortChronological(nil)) != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestSameMonth(t *testing.T) {
	if !SameMonth("Jan 2024", "2024-01") {
		t.Fatalf("equivalent labels should match")
	}
	if SameMonth("Jan 2024", "Feb 2024") {
		t.Fatalf("different months should not match")
	}
	if !SameMonth("custom", "CUSTOM") {
		t.Fatalf("unparseable labels compare as text")
	}
}

func TestRangeCutoff(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	cases := []struct {
		n    int
		want time.Time
	}{
		{1, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{6, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)},
		{12, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{0, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := RangeCutoff(now, tc.n); !got.Equal(tc.want) {
			t.Fatalf("n=%d expected %v, got %v", tc.n, tc.want, got)
		}
	}

	huge := RangeCutoff(now, int(^uint(0)>>1))
	if !huge.Before(now) || huge.Day() != 1 || huge.Hour() != 0 {
		t.Fatalf("huge n should clamp to a past first-of-month, got %v", huge)
	}

	// month-end dates must not skip a month
	endOfMonth := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	if got := RangeCutoff(endOfMonth, 3); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Mar 1, got %v", got)
	}
}

func TestGroupByMonth(t *testing.T) {
	txs := []Transaction{
		{ID: "a", Date: NewDate(2024, 1, 5), Type: Expense, Amount: decimal.NewFromInt(10)},
		{ID: "b", Date: NewDate(2024, 2, 1), Type: Income, Amount: decimal.NewFromInt(100)},
		{ID: "c", Date: NewDate(2024, 1, 20), Type: Income, Amount: decimal.NewFromInt(50)},
	}
	groups := GroupByMonth(txs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Month != "Feb 2024" || groups[1].Month != "Jan 2024" {
		t.Fatalf("expected newest first, got %s, %s", groups[0].Month, groups[1].Month)
	}
	jan := groups[1]
	if jan.Transactions[0].ID != "c" {
		t.Fatalf("transactions should be newest first within a month")
	}
	if !jan.TotalIncome.Valid || !jan.TotalIncome.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected income %v", jan.TotalIncome)
	}
	if !jan.TotalExpense.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected expense %v", jan.TotalExpense)
	}
}
