package views

import (
	"math"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/paginate"
)

type (
	TransactionRow struct {
		ID         string      `json:"id"`
		Date       string      `json:"date"`
		Type       core.TxType `json:"type"`
		Amount     Amount      `json:"amount"`
		Category   string      `json:"category"`
		CategoryID string      `json:"categoryId,omitempty"`
		Note       string      `json:"note,omitempty"`
	}

	// MonthCard lists the filtered rows of a month under its whole-month totals.
	MonthCard struct {
		Month   string           `json:"month"`
		Income  Amount           `json:"income"`
		Expense Amount           `json:"expense"`
		Net     Amount           `json:"net"`
		Rows    []TransactionRow `json:"rows"`
	}

	TransactionListView struct {
		EmptyState
		Filters    filter.Criteria `json:"filters"`
		FilterKey  string          `json:"filterKey"`
		Months     []MonthCard     `json:"months"`
		Page       int             `json:"page"`
		TotalPages int             `json:"totalPages"`
		TotalCards int             `json:"totalMonths"`
		Clamped    bool            `json:"clamped"`
	}
)

// TransactionList filters, paginates and shapes the month cards. page is the
// requested page; the returned view carries the page actually shown.
func TransactionList(groups []core.MonthGroup, c filter.Criteria, page, pageSize int, now time.Time) TransactionListView {
	filtered := filter.Apply(groups, c, now)
	p := paginate.Paginate(filtered, pageSize, page)

	v := TransactionListView{
		Filters:    c,
		FilterKey:  c.Key(),
		Months:     make([]MonthCard, 0, len(p.Items)),
		Page:       p.Number,
		TotalPages: p.TotalPages,
		TotalCards: p.TotalItems,
		Clamped:    p.Clamped,
	}
	switch {
	case len(groups) == 0:
		v.EmptyState = emptyIf(true, NoData)
	case len(filtered) == 0:
		v.EmptyState = emptyIf(true, NoMatch)
	}

	for _, g := range p.Items {
		card := MonthCard{
			Month:   g.Month,
			Income:  amount(g.TotalIncome),
			Expense: amount(g.TotalExpense),
			Net:     amount(g.Net),
			Rows:    make([]TransactionRow, 0, len(g.Transactions)),
		}
		for _, tx := range g.Transactions {
			card.Rows = append(card.Rows, TransactionRow{
				ID:         tx.ID,
				Date:       tx.Date.String(),
				Type:       tx.Type,
				Amount:     amount(tx.Amount),
				Category:   tx.CategoryName(),
				CategoryID: tx.ResolvedCategoryID(),
				Note:       tx.Note,
			})
		}
		v.Months = append(v.Months, card)
	}
	return v
}

// PageFor picks the page to request when the client echoes the filter key of
// the list it is showing. Different criteria start again from page 1; the
// upper clamp is left to TransactionList.
func PageFor(prevKey string, c filter.Criteria, requested int) int {
	var st paginate.State
	if prevKey != "" {
		st.Resolve(prevKey, 0, 1, requested)
	}
	return st.Resolve(c.Key(), math.MaxInt32, 1, requested)
}
