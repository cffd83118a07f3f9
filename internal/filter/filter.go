// Package filter narrows MonthGroups to what a view asked for while keeping
// each surviving month's whole-month totals.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// All is the value the UI sends for "no filter".
const All = "all"

// Range limits the result to the last N calendar months. Zero means all.
type Range int

const (
	RangeAll Range = 0
	Last3    Range = 3
	Last6    Range = 6
	Last12   Range = 12
)

type Criteria struct {
	Type       core.TxType `json:"type,omitempty"`
	CategoryID string      `json:"categoryId,omitempty"`
	Month      string      `json:"month,omitempty"`
	Range      Range       `json:"range,omitempty"`
}

// MaxRange is the longest month window ParseRange accepts.
const MaxRange Range = 1200

// ParseRange accepts "", "all", "3", "6", "12" or any month count up to
// MaxRange.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == All {
		return RangeAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return RangeAll, fmt.Errorf("invalid range %q", s)
	}
	if n > int(MaxRange) {
		return RangeAll, fmt.Errorf("invalid range %q: at most %d months", s, MaxRange)
	}
	return Range(n), nil
}

func (r Range) String() string {
	if r <= 0 {
		return All
	}
	return strconv.Itoa(int(r))
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

func (c Criteria) typeSet() bool     { return isSet(string(c.Type)) }
func (c Criteria) categorySet() bool { return isSet(c.CategoryID) }
func (c Criteria) monthSet() bool    { return isSet(c.Month) }

// narrows reports whether empty months should be hidden. Range only drops
// whole months, so it does not count.
func (c Criteria) narrows() bool {
	return c.typeSet() || c.categorySet() || c.monthSet()
}

// Active reports whether any filter differs from its default.
func (c Criteria) Active() bool {
	return c.narrows() || c.Range > 0
}

// Key is a canonical form of the criteria, stable across equivalent inputs.
func (c Criteria) Key() string {
	norm := func(v string, set bool) string {
		if !set {
			return All
		}
		return strings.TrimSpace(v)
	}
	return strings.Join([]string{
		norm(string(c.Type), c.typeSet()),
		norm(c.CategoryID, c.categorySet()),
		norm(c.Month, c.monthSet()),
		c.Range.String(),
	}, "|")
}

// ByRange keeps groups on or after the range cutoff. Labels that do not parse
// are always kept.
func ByRange(groups []core.MonthGroup, r Range, now time.Time) []core.MonthGroup {
	if r <= 0 {
		return groups
	}
	cutoff := core.RangeCutoff(now, int(r))
	// labels parse in UTC; compare on the calendar month only
	cutoffMonth := time.Date(cutoff.Year(), cutoff.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := make([]core.MonthGroup, 0, len(groups))
	for _, g := range groups {
		t, ok := core.ParseMonthLabel(g.Month)
		if !ok || !t.Before(cutoffMonth) {
			out = append(out, g)
		}
	}
	return out
}

// Apply scopes groups by range, month, type and category. Within surviving
// months only matching transactions are listed, but totals stay whole-month.
// When a type, category or month filter is set, months left without rows are
// dropped.
func Apply(groups []core.MonthGroup, c Criteria, now time.Time) []core.FilteredMonthGroup {
	groups = ByRange(groups, c.Range, now)

	out := make([]core.FilteredMonthGroup, 0, len(groups))
	for _, g := range groups {
		if c.monthSet() && !core.SameMonth(g.Month, c.Month) {
			continue
		}

		visible := g.Transactions
		if c.typeSet() || c.categorySet() {
			visible = make([]core.Transaction, 0, len(g.Transactions))
			for _, tx := range g.Transactions {
				if c.matches(tx) {
					visible = append(visible, tx)
				}
			}
		}
		if c.narrows() && len(visible) == 0 {
			continue
		}

		income, expense := g.Totals()
		out = append(out, core.FilteredMonthGroup{
			Month:        g.Month,
			Transactions: visible,
			TotalIncome:  income,
			TotalExpense: expense,
			Net:          income.Sub(expense),
		})
	}
	return out
}

func (c Criteria) matches(tx core.Transaction) bool {
	if c.typeSet() && tx.Type != core.TxType(strings.TrimSpace(string(c.Type))) {
		return false
	}
	if c.categorySet() {
		id := tx.ResolvedCategoryID()
		if id == "" || id != strings.TrimSpace(c.CategoryID) {
			return false
		}
	}
	return true
}
