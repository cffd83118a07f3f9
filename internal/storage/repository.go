package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ports"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	version uint
}

var _ ports.Ledger = (*SQLiteRepository)(nil)

// DSN builds the modernc connection string. Foreign keys are per-connection
// in SQLite, so the pragma has to travel with every pooled connection.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, version: version}, nil
}

// SchemaVersion is the migration version the store opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.version }

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const selectTransactions = `
SELECT t.id, t.date, t.type, t.amount, t.category_id, t.note, c.name, c.type
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                         core.Transaction
		date, txType, amount, note string
		catID, catName, catType    sql.NullString
	)
	if err := row.Scan(&tx.ID, &date, &txType, &amount, &catID, &note, &catName, &catType); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	tx.Date = d
	tx.Type = core.TxType(txType)
	// unreadable amounts count as zero, like any other malformed row
	tx.Amount, _ = core.ParseAmount(amount)
	tx.Note = note
	if catID.Valid && catName.Valid {
		tx.CategoryID = catID.String
		tx.Category = &core.CategoryRef{ID: catID.String, Name: catName.String, Type: core.TxType(catType.String)}
	}
	return tx, nil
}

// ListMonthGroups implements ports.TransactionStore
func (r *SQLiteRepository) ListMonthGroups(ctx context.Context) ([]core.MonthGroup, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+` ORDER BY t.date DESC, t.created_at DESC, t.id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return core.GroupByMonth(txs), nil
}

func (r *SQLiteRepository) getTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, selectTransactions+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) checkCategory(ctx context.Context, in core.TransactionInput) error {
	if in.CategoryID == "" {
		return nil
	}
	var catType string
	err := r.db.QueryRowContext(ctx, `SELECT type FROM categories WHERE id = ?`, in.CategoryID).Scan(&catType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %s: %w", in.CategoryID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if core.TxType(catType) != in.Type {
		return ports.ErrCategoryMismatch
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// AddTransaction implements ports.TransactionStore
func (r *SQLiteRepository) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := r.checkCategory(ctx, in); err != nil {
		return core.Transaction{}, err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, type, amount, category_id, note) VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.Date.String(), string(in.Type), in.Amount.StringFixed(2), nullable(in.CategoryID), in.Note)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", in.Type,
		"amount", in.Amount.StringFixed(2),
		"date", in.Date.String())

	return r.getTransaction(ctx, id)
}

// UpdateTransaction implements ports.TransactionStore
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if _, err := r.getTransaction(ctx, id); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkCategory(ctx, in); err != nil {
		return core.Transaction{}, err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, type = ?, amount = ?, category_id = ?, note = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		in.Date.String(), string(in.Type), in.Amount.StringFixed(2), nullable(in.CategoryID), in.Note, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return r.getTransaction(ctx, id)
}

// DeleteTransaction implements ports.TransactionStore
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func requireRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ports.ErrNotFound)
	}
	return nil
}

// ListCategories implements ports.CategoryStore
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, icon FROM categories ORDER BY type, name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory implements ports.CategoryStore
func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name, type, icon FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// AddCategory implements ports.CategoryStore
func (r *SQLiteRepository) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Name: in.Name, Type: in.Type, Icon: in.Icon}
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name, type, icon) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon)
	if isUniqueViolation(err) {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// UpdateCategory implements ports.CategoryStore. An empty icon keeps the current one.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, icon = CASE WHEN ? = '' THEN icon ELSE ? END WHERE id = ?`,
		in.Name, string(in.Type), in.Icon, in.Icon, id)
	if isUniqueViolation(err) {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := requireRow(res, "category", id); err != nil {
		return core.Category{}, err
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory implements ports.CategoryStore. The foreign key clears
// category_id on the affected transactions.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireRow(res, "category", id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}
