package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func tx(id string, typ core.TxType, amount int64, categoryID string) core.Transaction {
	t := core.Transaction{ID: id, Type: typ, Amount: decimal.NewFromInt(amount)}
	if categoryID != "" {
		t.Category = &core.CategoryRef{ID: categoryID, Name: categoryID}
	}
	return t
}

func group(label string, txs ...core.Transaction) core.MonthGroup {
	g := core.MonthGroup{Month: label, Transactions: txs}
	income, expense := core.SumByType(txs)
	g.TotalIncome = decimal.NewNullDecimal(income)
	g.TotalExpense = decimal.NewNullDecimal(expense)
	return g
}

func sample() []core.MonthGroup {
	return []core.MonthGroup{
		group("Mar 2024", tx("m1", core.Income, 1000, "salary-id"), tx("m2", core.Expense, 50, "food-id")),
		group("Feb 2024", tx("f1", core.Expense, 20, "fun-id"), tx("f2", core.Expense, 5, "")),
		group("Jan 2024"),
		group("Nov 2023", tx("n1", core.Income, 300, "salary-id")),
	}
}

func months(fg []core.FilteredMonthGroup) []string {
	out := make([]string, len(fg))
	for i, g := range fg {
		out[i] = g.Month
	}
	return out
}

func TestApplyNoFiltersPassesThrough(t *testing.T) {
	in := sample()
	for _, c := range []Criteria{{}, {Type: All, CategoryID: All, Month: All}} {
		got := Apply(in, c, now)
		if len(got) != len(in) {
			t.Fatalf("expected %d groups, got %d", len(in), len(got))
		}
		for i, g := range got {
			income, expense := in[i].Totals()
			if g.Month != in[i].Month || !reflect.DeepEqual(g.Transactions, in[i].Transactions) {
				t.Fatalf("group %d altered: %+v", i, g)
			}
			if !g.TotalIncome.Equal(income) || !g.TotalExpense.Equal(expense) {
				t.Fatalf("group %d totals altered", i)
			}
		}
	}
}

func TestApplyTypeNeverLeaksOtherType(t *testing.T) {
	got := Apply(sample(), Criteria{Type: core.Income}, now)
	if want := []string{"Mar 2024", "Nov 2023"}; !reflect.DeepEqual(months(got), want) {
		t.Fatalf("expected %v, got %v", want, months(got))
	}
	for _, g := range got {
		for _, row := range g.Transactions {
			if row.Type != core.Income {
				t.Fatalf("expense leaked into income filter: %+v", row)
			}
		}
	}
	// header keeps whole-month totals
	if !got[0].TotalExpense.Equal(decimal.NewFromInt(50)) || !got[0].Net.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("header totals must stay unfiltered, got %+v", got[0])
	}
}

func TestApplyCategoryDropsEmptyMonthScenarioD(t *testing.T) {
	got := Apply(sample(), Criteria{CategoryID: "food-id"}, now)
	if want := []string{"Mar 2024"}; !reflect.DeepEqual(months(got), want) {
		t.Fatalf("expected %v, got %v", want, months(got))
	}
	if len(got[0].Transactions) != 1 || got[0].Transactions[0].ID != "m2" {
		t.Fatalf("unexpected rows %+v", got[0].Transactions)
	}
}

func TestApplyUncategorizedNeverMatchesCategory(t *testing.T) {
	got := Apply([]core.MonthGroup{group("Feb 2024", tx("x", core.Expense, 5, ""))}, Criteria{CategoryID: "food-id"}, now)
	if len(got) != 0 {
		t.Fatalf("uncategorized row matched a category filter")
	}
}

func TestApplyCategoryUsesExplicitID(t *testing.T) {
	row := core.Transaction{ID: "x", Type: core.Expense, CategoryID: "food-id"}
	got := Apply([]core.MonthGroup{group("Feb 2024", row)}, Criteria{CategoryID: "food-id"}, now)
	if len(got) != 1 {
		t.Fatalf("expected match on categoryId without embedded category")
	}
}

func TestApplyMonth(t *testing.T) {
	got := Apply(sample(), Criteria{Month: "Feb 2024"}, now)
	if want := []string{"Feb 2024"}; !reflect.DeepEqual(months(got), want) {
		t.Fatalf("expected %v, got %v", want, months(got))
	}
	if len(got[0].Transactions) != 2 {
		t.Fatalf("month filter alone should keep every row")
	}

	// month filter active on an empty month drops it
	if got := Apply(sample(), Criteria{Month: "Jan 2024"}, now); len(got) != 0 {
		t.Fatalf("empty month should be hidden while filtering, got %v", months(got))
	}
}

func TestApplyCombined(t *testing.T) {
	got := Apply(sample(), Criteria{Type: core.Expense, Month: "Mar 2024"}, now)
	if len(got) != 1 || len(got[0].Transactions) != 1 || got[0].Transactions[0].ID != "m2" {
		t.Fatalf("unexpected combined result %+v", got)
	}
}

func TestApplyRangeKeepsEmptyMonths(t *testing.T) {
	got := Apply(sample(), Criteria{Range: Last3}, now)
	if want := []string{"Mar 2024", "Feb 2024", "Jan 2024"}; !reflect.DeepEqual(months(got), want) {
		t.Fatalf("expected %v, got %v", want, months(got))
	}
}

func TestByRange(t *testing.T) {
	groups := []core.MonthGroup{
		{Month: "Mar 2024"},
		{Month: "Oct 2023"},
		{Month: "Sep 2023"},
		{Month: "mystery"},
		{Month: "Mar 2023"},
	}
	cases := []struct {
		r    Range
		want []string
	}{
		{RangeAll, []string{"Mar 2024", "Oct 2023", "Sep 2023", "mystery", "Mar 2023"}},
		{Last3, []string{"Mar 2024", "mystery"}},
		{Last6, []string{"Mar 2024", "Oct 2023", "mystery"}},
		{Last12, []string{"Mar 2024", "Oct 2023", "Sep 2023", "mystery"}},
	}
	for _, tc := range cases {
		got := ByRange(groups, tc.r, now)
		labels := make([]string, len(got))
		for i, g := range got {
			labels[i] = g.Month
		}
		if !reflect.DeepEqual(labels, tc.want) {
			t.Fatalf("range %v: expected %v, got %v", tc.r, tc.want, labels)
		}
	}
}

func TestByRangeLocalTime(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// already April locally while still March in UTC
	local := time.Date(2024, 4, 1, 5, 0, 0, 0, loc)
	got := ByRange([]core.MonthGroup{{Month: "Apr 2024"}, {Month: "Mar 2024"}}, 1, local)
	if len(got) != 1 || got[0].Month != "Apr 2024" {
		t.Fatalf("cutoff should follow the caller's calendar, got %+v", got)
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want Range
		ok   bool
	}{
		{"", RangeAll, true},
		{"all", RangeAll, true},
		{"ALL", RangeAll, true},
		{"3", Last3, true},
		{"12", Last12, true},
		{"24", Range(24), true},
		{"1200", MaxRange, true},
		{"1201", RangeAll, false},
		{"9223372036854775807", RangeAll, false},
		{"99999999999999999999", RangeAll, false},
		{"-1", RangeAll, false},
		{"x", RangeAll, false},
	}
	for _, tc := range cases {
		got, err := ParseRange(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("%q: expected %v ok=%v, got %v err=%v", tc.in, tc.want, tc.ok, got, err)
		}
	}
}

func TestCriteriaActiveAndKey(t *testing.T) {
	if (Criteria{}).Active() || (Criteria{Type: All, Month: "all"}).Active() {
		t.Fatalf("defaults should not be active")
	}
	if !(Criteria{Range: Last6}).Active() {
		t.Fatalf("range should count as active")
	}
	if (Criteria{}).Key() != (Criteria{Type: All, CategoryID: " all ", Month: All}).Key() {
		t.Fatalf("equivalent criteria should share a key")
	}
	if (Criteria{Type: core.Income}).Key() == (Criteria{}).Key() {
		t.Fatalf("different criteria should differ")
	}
}
