package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

type fakeValues struct {
	tabs map[string][][]any
	err  error
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tabs[rng], nil
}

func (f *fakeValues) Append(_ context.Context, rng string, rows [][]any) error {
	if f.err != nil {
		return f.err
	}
	f.tabs[rng] = append(f.tabs[rng], rows...)
	return nil
}

func TestParseTransactions(t *testing.T) {
	values := [][]any{
		{"Note", "ID", "Date", "Type", "Amount", "Category"},
		{"lunch", "t1", "2024-03-05", "Expense", 12.5, "c1"},
		{"", "", "2024-03-06", "expense", "1"},         // no id
		{"", "t2", "yesterday", "expense", "1"},        // bad date
		{"bonus", "t3", "2024-02-01", "income", "n/a"}, // bad amount
		{"short", "t4", "2024-02-02", "income"},
	}
	txs, err := parseTransactions(values)
	if err != nil {
		t.Fatalf("parseTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(txs), txs)
	}
	if txs[0].Type != core.Expense || !txs[0].Amount.Equal(decimal.RequireFromString("12.5")) || txs[0].CategoryID != "c1" || txs[0].Note != "lunch" {
		t.Fatalf("unexpected first row %+v", txs[0])
	}
	if !txs[1].Amount.IsZero() {
		t.Fatalf("bad amount should read as zero")
	}
	if txs[2].Note != "short" || !txs[2].Amount.IsZero() {
		t.Fatalf("short row should parse with blanks, got %+v", txs[2])
	}
}

func TestParseTransactionsHeaderMismatch(t *testing.T) {
	_, err := parseTransactions([][]any{{"Month", "Day", "Description"}})
	if err == nil {
		t.Fatalf("expected header error")
	}
}

func TestParseCategories(t *testing.T) {
	values := [][]any{
		{"ID", "Name", "Type"},
		{"c1", "Food", "expense"},
		{"c1", "Food again", "expense"},
		{"c2", "# comment", "expense"},
		{"c3", "Salary", "INCOME"},
	}
	cats, err := parseCategories(values)
	if err != nil {
		t.Fatalf("parseCategories: %v", err)
	}
	if len(cats) != 2 || cats[1].Type != core.Income || cats[0].Icon != "" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestClientRoundTrip(t *testing.T) {
	fake := &fakeValues{tabs: map[string][][]any{}}
	c := newClient(fake, Config{})
	ctx := context.Background()

	food, err := c.AddCategory(ctx, core.CategoryInput{Name: "Food", Type: core.Expense})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if _, err := c.AddCategory(ctx, core.CategoryInput{Name: "food", Type: core.Expense}); !errors.Is(err, ports.ErrDuplicateCategory) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if got := fake.tabs["Categories!A:D"][0][0]; got != "ID" {
		t.Fatalf("expected header row first, got %v", got)
	}

	if _, err := c.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 4, 2), Type: core.Income, Amount: decimal.NewFromInt(5), CategoryID: food.ID}); !errors.Is(err, ports.ErrCategoryMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	tx, err := c.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 4, 2), Type: core.Expense, Amount: decimal.NewFromInt(5), CategoryID: food.ID})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if tx.CategoryName() != "Food" {
		t.Fatalf("expected resolved category, got %q", tx.CategoryName())
	}

	groups, err := c.ListMonthGroups(ctx)
	if err != nil {
		t.Fatalf("ListMonthGroups: %v", err)
	}
	if len(groups) != 1 || groups[0].Month != "Apr 2024" || groups[0].Transactions[0].CategoryName() != "Food" {
		t.Fatalf("unexpected groups %+v", groups)
	}

	if err := c.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ports.ErrReadOnly) {
		t.Fatalf("expected read-only, got %v", err)
	}
	if _, err := c.UpdateCategory(ctx, food.ID, core.CategoryInput{Name: "x", Type: core.Expense}); !errors.Is(err, ports.ErrReadOnly) {
		t.Fatalf("expected read-only, got %v", err)
	}
	if _, err := c.GetCategory(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientPropagatesReadErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := newClient(&fakeValues{tabs: map[string][][]any{}, err: boom}, Config{TransactionsSheet: "Tx"})
	if _, err := c.ListMonthGroups(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestNewClientRequiresSpreadsheet(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without spreadsheet id")
	}
	if _, err := NewClient(context.Background(), Config{SpreadsheetID: "abc"}); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
