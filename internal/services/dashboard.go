package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/market"
	"fintrack/internal/views"
)

// DashboardData loads the month groups and the display-currency rate in
// parallel. A failed or skipped rate lookup leaves the rate nil; only a
// failed ledger read is an error.
func DashboardData(ctx context.Context, ledger *LedgerService, m *MarketService, target string) ([]core.MonthGroup, *market.Rate, error) {
	target = strings.ToUpper(strings.TrimSpace(target))

	var (
		groups []core.MonthGroup
		rate   *market.Rate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = ledger.MonthGroups(gctx)
		return err
	})
	if m != nil && views.IsSupportedCurrency(target) {
		g.Go(func() error {
			r, err := m.Rate(gctx, target)
			if err == nil {
				rate = &r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return groups, rate, nil
}

// Dashboard composes the dashboard view for target.
func Dashboard(ctx context.Context, ledger *LedgerService, m *MarketService, target string) (views.DashboardView, error) {
	groups, rate, err := DashboardData(ctx, ledger, m, target)
	if err != nil {
		return views.DashboardView{}, err
	}
	return views.Dashboard(groups, target, rate), nil
}
