package http

import (
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/market"
	"fintrack/internal/paginate"
	"fintrack/internal/services"
	"fintrack/internal/views"
)

const (
	defaultCurrency  = "INR"
	defaultCountry   = "USA"
	defaultChartCoin = "bitcoin"
	maxPageSize      = 50
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	currency := strings.ToUpper(queryValue(r.URL.Query(), "currency"))
	if currency == "" {
		currency = defaultCurrency
	}
	if !isAlphaCode(currency, 3, 3) {
		s.writeError(w, r, fmt.Errorf("%w: currency must be a 3-letter code", errBadRequest))
		return
	}
	v, err := services.Dashboard(r.Context(), s.ledger, s.market, currency)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(v).Write(w)
}

func (s *Server) handleBar(w http.ResponseWriter, r *http.Request) {
	rng, err := filter.ParseRange(queryValue(r.URL.Query(), "range"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	groups, err := s.ledger.MonthGroups(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(views.Bar(groups, rng, s.ledger.Now())).Write(w)
}

func (s *Server) handleDonut(w http.ResponseWriter, r *http.Request) {
	t, err := ParseTxType(r.URL.Query(), "type", core.Expense)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	groups, err := s.ledger.MonthGroups(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(views.Donut(groups, t)).Write(w)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	groups, err := s.ledger.MonthGroups(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(views.NetWorth(groups)).Write(w)
}

// handleTransactionList serves the filtered, paginated month cards. The
// client echoes the filterKey of the list it shows so a changed filter
// starts again from page 1.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := ParseCriteria(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := ParsePositiveInt(q, "page", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pageSize, err := ParsePositiveInt(q, "pageSize", paginate.DefaultPageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	groups, err := s.ledger.MonthGroups(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	page = views.PageFor(queryValue(q, "filterKey"), c, page)
	NewJSONResponse().Body(views.TransactionList(groups, c, page, pageSize, s.ledger.Now())).Write(w)
}

func (s *Server) handleCrypto(w http.ResponseWriter, r *http.Request) {
	if s.market == nil {
		s.loadFailed(w, r, market.ErrUnavailable)
		return
	}
	prices, chart, err := s.market.CryptoData(r.Context(), views.CryptoIDs, defaultChartCoin)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(views.Crypto(prices, chart)).Write(w)
}

func (s *Server) handleInflation(w http.ResponseWriter, r *http.Request) {
	country := strings.ToUpper(queryValue(r.URL.Query(), "country"))
	if country == "" {
		country = defaultCountry
	}
	if !isAlphaCode(country, 2, 3) {
		s.writeError(w, r, fmt.Errorf("%w: country must be a 2 or 3 letter code", errBadRequest))
		return
	}
	if s.market == nil {
		s.loadFailed(w, r, market.ErrUnavailable)
		return
	}
	inf, err := s.market.Inflation(r.Context(), country)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(views.Inflation(inf)).Write(w)
}

func (s *Server) handleFXRate(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(queryValue(r.URL.Query(), "symbol"))
	if !isAlphaCode(symbol, 3, 3) {
		s.writeError(w, r, fmt.Errorf("%w: symbol must be a 3-letter currency code", errBadRequest))
		return
	}
	if s.market == nil {
		s.loadFailed(w, r, market.ErrUnavailable)
		return
	}
	rate, err := s.market.Rate(r.Context(), symbol)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(rate).Write(w)
}

func isAlphaCode(s string, lo, hi int) bool {
	if len(s) < lo || len(s) > hi {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
