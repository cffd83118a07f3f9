package ports

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category already exists for this type")
	ErrCategoryMismatch  = errors.New("category type does not match transaction type")
	ErrReadOnly          = errors.New("operation not supported by this backend")
)

// Ports for outbound adapters.
type (
	// TransactionStore is the transaction API collaborator. ListMonthGroups
	// returns months newest first with category names resolved.
	TransactionStore interface {
		ListMonthGroups(ctx context.Context) ([]core.MonthGroup, error)
		AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// CategoryStore owns categories. Names are unique per type, ignoring case.
	// Deleting a category leaves its transactions uncategorized.
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
		UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	Ledger interface {
		TransactionStore
		CategoryStore
	}
)
