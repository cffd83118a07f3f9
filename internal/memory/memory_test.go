package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/ports"
	"fintrack/internal/ports/portstest"
)

func TestLedger(t *testing.T) {
	portstest.RunLedger(t, func(*testing.T) ports.Ledger { return New() })
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	seed := `{
		"categories": [{"id":"food","name":"Food","type":"expense"}],
		"transactions": [
			{"id":"t1","date":"2024-01-05","type":"expense","amount":"12.50","categoryId":"food"},
			{"id":"t2","date":"2024-01-06","type":"expense","amount":"oops","category":{"id":"ghost","name":"Ghost"}},
			{"id":"t3","date":"bad","type":"expense","amount":"5"},
			{"id":"t4","type":"income","amount":"7"}
		]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if s.SkippedSeedRows() != 2 {
		t.Fatalf("SkippedSeedRows() = %d, want 2", s.SkippedSeedRows())
	}
	groups, _ := s.ListMonthGroups(context.Background())
	if len(groups) != 1 || len(groups[0].Transactions) != 2 {
		t.Fatalf("unexpected groups %+v", groups)
	}
	rows := groups[0].Transactions
	if rows[0].ID != "t2" || !rows[0].Amount.IsZero() || rows[0].CategoryName() != "Uncategorized" {
		t.Fatalf("malformed row should load as zero, uncategorized: %+v", rows[0])
	}
	if rows[1].CategoryName() != "Food" {
		t.Fatalf("expected Food, got %s", rows[1].CategoryName())
	}
}

func TestNewFromFileMissing(t *testing.T) {
	s, err := NewFromFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || s == nil {
		t.Fatalf("missing seed should give an empty store, got %v", err)
	}
	if _, err := NewFromFile(writeTemp(t, "{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
