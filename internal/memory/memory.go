// Package memory is an in-process ledger used for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

type Store struct {
	mu   sync.Mutex
	cats map[string]core.Category
	txs  map[string]core.Transaction
	// skipped counts seed transactions dropped for a missing or bad date.
	skipped int
}

var _ ports.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{cats: map[string]core.Category{}, txs: map[string]core.Transaction{}}
}

// Seed is the on-disk format accepted by NewFromFile.
type Seed struct {
	Categories   []core.Category    `json:"categories"`
	Transactions []core.Transaction `json:"transactions"`
}

// NewFromFile loads a JSON seed. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for _, c := range seed.Categories {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.cats[c.ID] = c
	}
	for _, tx := range seed.Transactions {
		if tx.Date.IsZero() {
			s.skipped++
			continue
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.CategoryID == "" && tx.Category != nil {
			tx.CategoryID = tx.Category.ID
		}
		tx.Category = nil
		s.txs[tx.ID] = tx
	}
	return s, nil
}

// SkippedSeedRows reports how many seed transactions had no usable date.
func (s *Store) SkippedSeedRows() int { return s.skipped }

func (s *Store) ListMonthGroups(_ context.Context) ([]core.MonthGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		txs = append(txs, s.resolve(tx))
	}
	// stable input so equal dates keep a deterministic order
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return core.GroupByMonth(txs), nil
}

func (s *Store) resolve(tx core.Transaction) core.Transaction {
	if c, ok := s.cats[tx.CategoryID]; ok {
		tx.Category = &core.CategoryRef{ID: c.ID, Name: c.Name, Type: c.Type}
	} else {
		tx.CategoryID = ""
		tx.Category = nil
	}
	return tx
}

func (s *Store) checkCategory(in core.TransactionInput) error {
	if in.CategoryID == "" {
		return nil
	}
	c, ok := s.cats[in.CategoryID]
	if !ok {
		return fmt.Errorf("category %s: %w", in.CategoryID, ports.ErrNotFound)
	}
	if c.Type != in.Type {
		return ports.ErrCategoryMismatch
	}
	return nil
}

func (s *Store) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCategory(in); err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:         uuid.NewString(),
		Date:       in.Date,
		Type:       in.Type,
		Amount:     in.Amount,
		CategoryID: in.CategoryID,
		Note:       in.Note,
	}
	s.txs[tx.ID] = tx
	return s.resolve(tx), nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	if err := s.checkCategory(in); err != nil {
		return core.Transaction{}, err
	}
	tx.Date, tx.Type, tx.Amount, tx.CategoryID, tx.Note = in.Date, in.Type, in.Amount, in.CategoryID, in.Note
	s.txs[id] = tx
	return s.resolve(tx), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	return c, nil
}

func (s *Store) duplicate(in core.CategoryInput, exceptID string) bool {
	for id, c := range s.cats {
		if id != exceptID && c.Type == in.Type && strings.EqualFold(c.Name, in.Name) {
			return true
		}
	}
	return false
}

func (s *Store) AddCategory(_ context.Context, in core.CategoryInput) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duplicate(in, "") {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	c := core.Category{ID: uuid.NewString(), Name: in.Name, Type: in.Type, Icon: in.Icon}
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id string, in core.CategoryInput) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	if s.duplicate(in, id) {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	c.Name, c.Type = in.Name, in.Type
	if in.Icon != "" {
		c.Icon = in.Icon
	}
	s.cats[id] = c
	return c, nil
}

// DeleteCategory removes the category; its transactions become uncategorized.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	delete(s.cats, id)
	for txID, tx := range s.txs {
		if tx.CategoryID == id {
			tx.CategoryID = ""
			s.txs[txID] = tx
		}
	}
	return nil
}
