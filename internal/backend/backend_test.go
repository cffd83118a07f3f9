package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/memory"
	"fintrack/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "mysql"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:             "sheets",
		GoogleSpreadsheetID:     "sheet-1",
		GoogleTransactionsSheet: "Tx",
		GoogleCredentialsJSON:   "{}",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSpreadsheetID != "sheet-1" || cfg.GoogleTransactionsSheet != "Tx" {
		t.Fatalf("unexpected backend config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"unknown", Config{Type: "oracle"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"postgres without url", Config{Type: PostgresBackend}, "PostgreSQL URL is required"},
		{"sheets without id", Config{Type: SheetsBackend, GoogleCredentialsJSON: "{}"}, "Spreadsheet ID is required"},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x"}, "GoogleCredentialsFile or GoogleCredentialsJSON"},
		{"sheets oauth", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x", GoogleOAuthClientJSON: "{}", GoogleOAuthTokenFile: "token.json"}, ""},
		{"sheets oauth without token", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x", GoogleOAuthClientJSON: "{}"}, "OAuth token is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "memory,sqlite,postgres,sheets" {
		t.Fatalf("GetBackendTypeStrings() = %s", got)
	}
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory with seed", func(t *testing.T) {
		seed := filepath.Join(t.TempDir(), "seed.json")
		body := `{"transactions":[{"id":"t1","date":"2024-01-05","type":"income","amount":"10"}]}`
		if err := os.WriteFile(seed, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		defer res.Cleanup()
		if _, ok := res.Ledger.(*memory.Store); !ok {
			t.Fatalf("unexpected ledger %T", res.Ledger)
		}
		groups, err := res.Ledger.ListMonthGroups(ctx)
		if err != nil || len(groups) != 1 {
			t.Fatalf("ListMonthGroups = %v, %v", groups, err)
		}
		if err := res.Ping(ctx); err != nil {
			t.Fatalf("memory backend should always be ready: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fintrack.db")
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		if _, ok := res.Ledger.(*storage.SQLiteRepository); !ok {
			t.Fatalf("unexpected ledger %T", res.Ledger)
		}
		if err := res.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: PostgresBackend}); err == nil {
			t.Fatal("expected validation error")
		}
	})
}
