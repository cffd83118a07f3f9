package backend

import (
	"context"

	"fintrack/internal/ports"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult contains the ledger and its cleanup function. Cleanup is never nil.
type BackendResult struct {
	Ledger  ports.Ledger
	Type    BackendType
	Cleanup CleanupFunc
}

// Ping reports readiness. Backends without a connection are always ready.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Ledger.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory
	SeedFile string

	// SQLite
	SQLiteDBPath string

	// PostgreSQL
	PostgresURL string

	// Google Sheets
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleCategoriesSheet   string
	GoogleCredentialsFile   string
	GoogleCredentialsJSON   string
	GoogleOAuthClientFile   string
	GoogleOAuthClientJSON   string
	GoogleOAuthTokenFile    string
	GoogleOAuthTokenJSON    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
