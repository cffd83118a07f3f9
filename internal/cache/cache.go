// Package cache holds collaborator responses keyed by enumerated Keys. An
// entry is filled on first read and dropped on every successful write that
// touches it.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/log"
)

// Invalidator is implemented by every Store so writes can drop keys without
// knowing the cached value type.
type Invalidator interface {
	Invalidate(key Key)
	InvalidateFamily(family string) int
	InvalidateAll()
}

// Store caches values of one type. Concurrent loads of the same key share a
// single call. A load that overlaps an invalidation of its key is returned to
// the caller but not stored.
type Store[T any] struct {
	lru   *LRUCache[T]
	group singleflight.Group

	mu       sync.Mutex
	epoch    uint64
	families map[string]uint64
	gens     map[Key]uint64
}

func NewStore[T any](maxSize int, ttl time.Duration) *Store[T] {
	return &Store[T]{
		lru:      NewLRUCache[T](maxSize, ttl),
		families: map[string]uint64{},
		gens:     map[Key]uint64{},
	}
}

func (s *Store[T]) token(key Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLocked(key)
}

func (s *Store[T]) tokenLocked(key Key) string {
	return fmt.Sprintf("%s#%d.%d.%d", key, s.epoch, s.families[key.Family()], s.gens[key])
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (s *Store[T]) GetOrLoad(ctx context.Context, key Key, load func(context.Context) (T, error)) (T, error) {
	if v, ok := s.lru.Get(string(key)); ok {
		return v, nil
	}

	token := s.token(key)
	v, err, _ := s.group.Do(token, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return val, err
		}
		s.mu.Lock()
		if s.tokenLocked(key) == token {
			s.lru.Set(string(key), val)
		}
		s.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *Store[T]) Peek(key Key) (T, bool) {
	return s.lru.Get(string(key))
}

func (s *Store[T]) Invalidate(key Key) {
	s.mu.Lock()
	s.gens[key]++
	s.lru.Delete(string(key))
	s.mu.Unlock()
}

// InvalidateFamily drops every key of a family such as "fx-rate".
func (s *Store[T]) InvalidateFamily(family string) int {
	family = strings.TrimSuffix(family, ":")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[family]++
	n := s.lru.DeletePrefix(family + ":")
	if _, ok := s.lru.Get(family); ok {
		s.lru.Delete(family)
		n++
	}
	return n
}

func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	s.epoch++
	s.lru.Clear()
	s.mu.Unlock()
}

func (s *Store[T]) CleanExpired() int { return s.lru.CleanExpired() }

func (s *Store[T]) Size() int { return s.lru.Size() }

// Manager runs periodic expiry across registered stores and fans
// invalidations out to all of them.
type Manager struct {
	stores      []managed
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
	once        sync.Once
}

type managed interface {
	Invalidator
	CleanExpired() int
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a store. Call before StartCleanup.
func (m *Manager) Register(store managed) {
	m.stores = append(m.stores, store)
}

// Invalidate drops key from every registered store.
func (m *Manager) Invalidate(ctx context.Context, key Key) {
	for _, s := range m.stores {
		s.Invalidate(key)
	}
	m.logger.DebugContext(ctx, "cache key invalidated", log.FieldCacheKey, string(key))
}

func (m *Manager) InvalidateFamily(ctx context.Context, family string) {
	n := 0
	for _, s := range m.stores {
		n += s.InvalidateFamily(family)
	}
	m.logger.DebugContext(ctx, "cache family invalidated", log.FieldCacheKey, family, log.FieldCount, n)
}

// Reset empties every store.
func (m *Manager) Reset() {
	for _, s := range m.stores {
		s.InvalidateAll()
	}
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, s := range m.stores {
				cleaned += s.CleanExpired()
			}
			if cleaned > 0 {
				m.logger.Debug("expired cache entries removed", log.FieldCount, cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup loop. Calling it more than once is harmless.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stopCleanup)
		if m.started {
			<-m.cleanupDone
		}
	})
}
