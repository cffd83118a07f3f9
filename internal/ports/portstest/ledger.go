// Package portstest holds behaviour checks shared by every ledger backend.
package portstest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// RunLedger exercises a fresh, empty ledger returned by newLedger.
func RunLedger(t *testing.T, newLedger func(t *testing.T) ports.Ledger) {
	t.Run("categories", func(t *testing.T) { testCategories(t, newLedger(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newLedger(t)) })
	t.Run("category delete leaves transactions uncategorized", func(t *testing.T) { testCategoryDelete(t, newLedger(t)) })
}

func testCategories(t *testing.T, l ports.Ledger) {
	ctx := context.Background()
	food, err := l.AddCategory(ctx, core.CategoryInput{Name: "Food", Type: core.Expense})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if food.ID == "" || food.Name != "Food" {
		t.Fatalf("unexpected category %+v", food)
	}
	if _, err := l.AddCategory(ctx, core.CategoryInput{Name: "FOOD", Type: core.Expense}); !errors.Is(err, ports.ErrDuplicateCategory) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	// same name, other type is allowed
	if _, err := l.AddCategory(ctx, core.CategoryInput{Name: "food", Type: core.Income}); err != nil {
		t.Fatalf("same name under another type should be allowed: %v", err)
	}

	updated, err := l.UpdateCategory(ctx, food.ID, core.CategoryInput{Name: "Groceries", Type: core.Expense})
	if err != nil || updated.Name != "Groceries" {
		t.Fatalf("UpdateCategory: %+v %v", updated, err)
	}
	got, err := l.GetCategory(ctx, food.ID)
	if err != nil || got.Name != "Groceries" {
		t.Fatalf("GetCategory: %+v %v", got, err)
	}
	if _, err := l.UpdateCategory(ctx, "missing", core.CategoryInput{Name: "X", Type: core.Expense}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := l.ListCategories(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListCategories: %v %v", list, err)
	}

	if err := l.DeleteCategory(ctx, food.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := l.DeleteCategory(ctx, food.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func testTransactions(t *testing.T, l ports.Ledger) {
	ctx := context.Background()
	salary, err := l.AddCategory(ctx, core.CategoryInput{Name: "Salary", Type: core.Income})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	in := core.TransactionInput{Date: core.NewDate(2024, 1, 31), Type: core.Income, Amount: decimal.RequireFromString("1000.50"), CategoryID: salary.ID, Note: "jan"}
	tx, err := l.AddTransaction(ctx, in)
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if tx.ID == "" || tx.CategoryName() != "Salary" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	if _, err := l.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 2, 1), Type: core.Expense, Amount: decimal.NewFromInt(1), CategoryID: salary.ID}); !errors.Is(err, ports.ErrCategoryMismatch) {
		t.Fatalf("expected category mismatch, got %v", err)
	}
	if _, err := l.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 2, 1), Type: core.Expense, Amount: decimal.NewFromInt(1), CategoryID: "nope"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected unknown category, got %v", err)
	}

	if _, err := l.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 2, 10), Type: core.Expense, Amount: decimal.RequireFromString("40.25")}); err != nil {
		t.Fatalf("AddTransaction without category: %v", err)
	}

	groups, err := l.ListMonthGroups(ctx)
	if err != nil {
		t.Fatalf("ListMonthGroups: %v", err)
	}
	if len(groups) != 2 || groups[0].Month != "Feb 2024" || groups[1].Month != "Jan 2024" {
		t.Fatalf("expected Feb then Jan, got %+v", groups)
	}
	if !groups[1].TotalIncome.Decimal.Equal(decimal.RequireFromString("1000.5")) {
		t.Fatalf("unexpected Jan income %v", groups[1].TotalIncome)
	}
	if !groups[0].TotalExpense.Decimal.Equal(decimal.RequireFromString("40.25")) {
		t.Fatalf("unexpected Feb expense %v", groups[0].TotalExpense)
	}
	if groups[0].Transactions[0].CategoryName() != core.UncategorizedLabel {
		t.Fatalf("expected uncategorized row")
	}

	in.Amount = decimal.NewFromInt(900)
	in.Date = core.NewDate(2024, 2, 28)
	updated, err := l.UpdateTransaction(ctx, tx.ID, in)
	if err != nil || !updated.Amount.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("UpdateTransaction: %+v %v", updated, err)
	}
	groups, _ = l.ListMonthGroups(ctx)
	if len(groups) != 1 || len(groups[0].Transactions) != 2 {
		t.Fatalf("moved transaction should join Feb, got %+v", groups)
	}
	if groups[0].Transactions[0].ID != tx.ID {
		t.Fatalf("newest transaction should come first")
	}

	if _, err := l.UpdateTransaction(ctx, "missing", in); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := l.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := l.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testCategoryDelete(t *testing.T, l ports.Ledger) {
	ctx := context.Background()
	rent, err := l.AddCategory(ctx, core.CategoryInput{Name: "Rent", Type: core.Expense})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if _, err := l.AddTransaction(ctx, core.TransactionInput{Date: core.NewDate(2024, 3, 1), Type: core.Expense, Amount: decimal.NewFromInt(800), CategoryID: rent.ID}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := l.DeleteCategory(ctx, rent.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	groups, err := l.ListMonthGroups(ctx)
	if err != nil || len(groups) != 1 {
		t.Fatalf("ListMonthGroups: %v %v", groups, err)
	}
	row := groups[0].Transactions[0]
	if row.CategoryName() != core.UncategorizedLabel || row.ResolvedCategoryID() != "" {
		t.Fatalf("expected uncategorized after delete, got %+v", row)
	}
}
