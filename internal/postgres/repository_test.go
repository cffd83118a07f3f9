package postgres

import (
	"context"
	"os"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/ports"
	"fintrack/internal/ports/portstest"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable", false},
		{"postgresql://localhost/db", "pgx5://localhost/db", false},
		{"pgx5://localhost/db", "pgx5://localhost/db", false},
		{"mysql://localhost/db", "", true},
	}
	for _, tt := range tests {
		got, err := migrationURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("migrationURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("migrationURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildTransaction(t *testing.T) {
	id, name, typ := "c1", "Rent", "expense"
	tx, err := buildTransaction("t1", "2024-02-29", "expense", "800.00", "feb", &id, &name, &typ)
	if err != nil {
		t.Fatalf("buildTransaction: %v", err)
	}
	if tx.CategoryName() != "Rent" || tx.Date.String() != "2024-02-29" || tx.Amount.String() != "800" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	tx, err = buildTransaction("t2", "2024-03-01", "income", "garbage", "", nil, nil, nil)
	if err != nil {
		t.Fatalf("buildTransaction: %v", err)
	}
	if !tx.Amount.IsZero() || tx.CategoryName() != core.UncategorizedLabel {
		t.Fatalf("expected zero, uncategorized row, got %+v", tx)
	}

	if _, err := buildTransaction("t3", "not a date", "income", "1", "", nil, nil, nil); err == nil {
		t.Fatalf("expected date error")
	}
}

// Runs against a real server only when FINTRACK_TEST_POSTGRES_URL is set.
func TestPostgresLedger(t *testing.T) {
	dsn := os.Getenv("FINTRACK_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FINTRACK_TEST_POSTGRES_URL not set")
	}
	portstest.RunLedger(t, func(t *testing.T) ports.Ledger {
		ctx := context.Background()
		repo, err := NewRepository(ctx, dsn)
		if err != nil {
			t.Fatalf("NewRepository: %v", err)
		}
		if _, err := repo.pool.Exec(ctx, `TRUNCATE transactions, categories`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}
