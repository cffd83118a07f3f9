package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/market"
)

type (
	FXSource interface {
		Rate(ctx context.Context, base, symbol string) (market.Rate, error)
	}

	CryptoSource interface {
		Prices(ctx context.Context, ids []string) ([]market.CoinPrice, error)
		MarketChart(ctx context.Context, id string, days int) ([]market.PricePoint, error)
	}

	InflationSource interface {
		Inflation(ctx context.Context, country string) (market.Inflation, error)
	}
)

const (
	BaseCurrency   = "USD"
	chartDays      = 30
	defaultTimeout = 8 * time.Second
)

// MarketService caches the display-only market lookups. Any source may be
// nil, in which case its lookups report market.ErrUnavailable.
type MarketService struct {
	fx        FXSource
	crypto    CryptoSource
	inflation InflationSource
	timeout   time.Duration

	rates      *cache.Store[market.Rate]
	prices     *cache.Store[[]market.CoinPrice]
	charts     *cache.Store[[]market.PricePoint]
	inflations *cache.Store[market.Inflation]

	events *log.StructuredLogger
}

func NewMarketService(fx FXSource, crypto CryptoSource, inflation InflationSource, caches *cache.Manager, logger *log.Logger, ttl, timeout time.Duration) *MarketService {
	if logger == nil {
		logger = log.Discard()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &MarketService{
		fx:         fx,
		crypto:     crypto,
		inflation:  inflation,
		timeout:    timeout,
		rates:      cache.NewStore[market.Rate](32, ttl),
		prices:     cache.NewStore[[]market.CoinPrice](4, ttl),
		charts:     cache.NewStore[[]market.PricePoint](8, ttl),
		inflations: cache.NewStore[market.Inflation](32, ttl),
		events:     log.NewStructuredLogger(logger),
	}
	if caches != nil {
		caches.Register(s.rates)
		caches.Register(s.prices)
		caches.Register(s.charts)
		caches.Register(s.inflations)
	}
	return s
}

func (s *MarketService) failed(ctx context.Context, what string, err error) error {
	s.events.LogError(ctx, what+" failed", err, log.ComponentMarket, log.OpRead,
		log.NewFields().WithErrorType(log.ErrorTypeNetwork))
	return fmt.Errorf("%s: %w", what, err)
}

// Rate returns the USD→symbol exchange rate.
func (s *MarketService) Rate(ctx context.Context, symbol string) (market.Rate, error) {
	if s.fx == nil {
		return market.Rate{}, market.ErrUnavailable
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	rate, err := s.rates.GetOrLoad(ctx, cache.FXRateKey(symbol), func(ctx context.Context) (market.Rate, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.fx.Rate(ctx, BaseCurrency, symbol)
	})
	if err != nil {
		return market.Rate{}, s.failed(ctx, "fx rate "+symbol, err)
	}
	return rate, nil
}

func (s *MarketService) Prices(ctx context.Context, ids []string) ([]market.CoinPrice, error) {
	if s.crypto == nil {
		return nil, market.ErrUnavailable
	}
	prices, err := s.prices.GetOrLoad(ctx, cache.KeyCryptoPrices, func(ctx context.Context) ([]market.CoinPrice, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.crypto.Prices(ctx, ids)
	})
	if err != nil {
		return nil, s.failed(ctx, "crypto prices", err)
	}
	return prices, nil
}

func (s *MarketService) Chart(ctx context.Context, id string) ([]market.PricePoint, error) {
	if s.crypto == nil {
		return nil, market.ErrUnavailable
	}
	points, err := s.charts.GetOrLoad(ctx, cache.CryptoChartKey(id), func(ctx context.Context) ([]market.PricePoint, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.crypto.MarketChart(ctx, id, chartDays)
	})
	if err != nil {
		return nil, s.failed(ctx, "crypto chart "+id, err)
	}
	return points, nil
}

// CryptoData fetches prices and the chart of chartID together. It fails
// only when both lookups fail.
func (s *MarketService) CryptoData(ctx context.Context, ids []string, chartID string) ([]market.CoinPrice, []market.PricePoint, error) {
	var (
		prices             []market.CoinPrice
		chart              []market.PricePoint
		pricesErr, chartErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		prices, pricesErr = s.Prices(ctx, ids)
		return nil
	})
	g.Go(func() error {
		chart, chartErr = s.Chart(ctx, chartID)
		return nil
	})
	_ = g.Wait()
	if pricesErr != nil && chartErr != nil {
		return nil, nil, pricesErr
	}
	return prices, chart, nil
}

func (s *MarketService) Inflation(ctx context.Context, country string) (market.Inflation, error) {
	if s.inflation == nil {
		return market.Inflation{}, market.ErrUnavailable
	}
	inf, err := s.inflations.GetOrLoad(ctx, cache.InflationKey(country), func(ctx context.Context) (market.Inflation, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.inflation.Inflation(ctx, country)
	})
	if err != nil {
		return market.Inflation{}, s.failed(ctx, "inflation "+country, err)
	}
	return inf, nil
}
