package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// ErrValidation wraps every input rejection so callers can map it to 422.
var ErrValidation = errors.New("validation failed")

// Publisher broadcasts cache invalidations to other instances.
type Publisher interface {
	PublishInvalidation(ctx context.Context, msg *amqp.InvalidationMessage) error
}

const defaultCacheTTL = 5 * time.Minute

// LedgerService fronts the configured ledger: reads are served from the
// cache, writes go to the store and then drop the keys they made stale.
type LedgerService struct {
	store      ports.Ledger
	groups     *cache.Store[[]core.MonthGroup]
	categories *cache.Store[[]core.Category]
	caches     *cache.Manager
	publisher  Publisher
	events     *log.StructuredLogger
	now        func() time.Time
}

type LedgerOption func(*LedgerService)

// WithPublisher enables cross-instance invalidation.
func WithPublisher(p Publisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(store ports.Ledger, caches *cache.Manager, logger *log.Logger, ttl time.Duration, opts ...LedgerOption) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if caches == nil {
		caches = cache.NewManager(logger)
	}
	s := &LedgerService{
		store:      store,
		groups:     cache.NewStore[[]core.MonthGroup](4, ttl),
		categories: cache.NewStore[[]core.Category](4, ttl),
		caches:     caches,
		events:     log.NewStructuredLogger(logger),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	caches.Register(s.groups)
	caches.Register(s.categories)
	return s
}

func (s *LedgerService) Now() time.Time { return s.now() }

// MonthGroups returns every month, newest first.
func (s *LedgerService) MonthGroups(ctx context.Context) ([]core.MonthGroup, error) {
	groups, err := s.groups.GetOrLoad(ctx, cache.KeyTransactions, s.store.ListMonthGroups)
	if err != nil {
		s.events.LogError(ctx, "failed to load transactions", err, log.ComponentLedger, log.OpList, nil)
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return groups, nil
}

func (s *LedgerService) Categories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.categories.GetOrLoad(ctx, cache.KeyCategories, s.store.ListCategories)
	if err != nil {
		s.events.LogError(ctx, "failed to load categories", err, log.ComponentLedger, log.OpList, nil)
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return cats, nil
}

func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(s.now()); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	tx, err := s.store.AddTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, s.writeFailed(ctx, "create transaction", log.OpCreate, err)
	}
	s.afterWrite(ctx, amqp.OpCreate, tx.ID, cache.KeyTransactions)
	s.events.LogWrite(ctx, "transaction created", log.OpCreate,
		log.NewFields().WithTransaction(tx.ID, string(tx.Type), tx.Amount.StringFixed(2), tx.CategoryID))
	return tx, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(s.now()); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	tx, err := s.store.UpdateTransaction(ctx, id, in)
	if err != nil {
		return core.Transaction{}, s.writeFailed(ctx, "update transaction", log.OpUpdate, err)
	}
	s.afterWrite(ctx, amqp.OpUpdate, tx.ID, cache.KeyTransactions)
	s.events.LogWrite(ctx, "transaction updated", log.OpUpdate,
		log.NewFields().WithTransaction(tx.ID, string(tx.Type), tx.Amount.StringFixed(2), tx.CategoryID))
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return s.writeFailed(ctx, "delete transaction", log.OpDelete, err)
	}
	s.afterWrite(ctx, amqp.OpDelete, id, cache.KeyTransactions)
	s.events.LogWrite(ctx, "transaction deleted", log.OpDelete, log.NewFields().WithTransaction(id, "", "", ""))
	return nil
}

// Category writes also drop transactions: month groups embed category names.

func (s *LedgerService) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	c, err := s.store.AddCategory(ctx, in)
	if err != nil {
		return core.Category{}, s.writeFailed(ctx, "create category", log.OpCreate, err)
	}
	s.afterWrite(ctx, amqp.OpCreate, c.ID, cache.KeyCategories, cache.KeyTransactions)
	s.events.LogWrite(ctx, "category created", log.OpCreate, log.NewFields().WithCategory(c.ID, c.Name))
	return c, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	c, err := s.store.UpdateCategory(ctx, id, in)
	if err != nil {
		return core.Category{}, s.writeFailed(ctx, "update category", log.OpUpdate, err)
	}
	s.afterWrite(ctx, amqp.OpUpdate, c.ID, cache.KeyCategories, cache.KeyTransactions)
	s.events.LogWrite(ctx, "category updated", log.OpUpdate, log.NewFields().WithCategory(c.ID, c.Name))
	return c, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return s.writeFailed(ctx, "delete category", log.OpDelete, err)
	}
	s.afterWrite(ctx, amqp.OpDelete, id, cache.KeyCategories, cache.KeyTransactions)
	s.events.LogWrite(ctx, "category deleted", log.OpDelete, log.NewFields().WithCategory(id, ""))
	return nil
}

func (s *LedgerService) writeFailed(ctx context.Context, what, op string, err error) error {
	fields := log.NewFields().WithErrorType(errorType(err))
	s.events.LogError(ctx, what+" failed", err, log.ComponentLedger, op, fields)
	return fmt.Errorf("%s: %w", what, err)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, ports.ErrDuplicateCategory), errors.Is(err, ports.ErrCategoryMismatch):
		return log.ErrorTypeConflict
	case errors.Is(err, ErrValidation):
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeDatabase
	}
}

// afterWrite drops the local keys before the caller responds, then tells
// the other instances. A failed publish is logged, never returned.
func (s *LedgerService) afterWrite(ctx context.Context, op, entityID string, keys ...cache.Key) {
	raw := make([]string, len(keys))
	for i, k := range keys {
		s.caches.Invalidate(ctx, k)
		raw[i] = string(k)
	}
	if s.publisher == nil {
		return
	}
	msg := amqp.NewInvalidationMessage("", op, entityID, raw...)
	if err := s.publisher.PublishInvalidation(ctx, msg); err != nil {
		s.events.LogError(ctx, "failed to publish cache invalidation", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithErrorType(log.ErrorTypeNetwork))
	}
}
