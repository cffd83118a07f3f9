// Package postgres stores the ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

const uniqueViolation = "23505"

type Repository struct {
	pool    *pgxpool.Pool
	version uint
}

var _ ports.Ledger = (*Repository)(nil)

// NewRepository migrates the schema at dsn and opens a connection pool.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	version, err := RunMigrations(dsn)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool, version: version}, nil
}

func (r *Repository) SchemaVersion() uint { return r.version }

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const selectTransactions = `
SELECT t.id, to_char(t.date, 'YYYY-MM-DD'), t.type, t.amount::text, t.category_id, t.note, c.name, c.type
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx                         core.Transaction
		date, txType, amount, note string
		catID, catName, catType    *string
	)
	if err := row.Scan(&tx.ID, &date, &txType, &amount, &catID, &note, &catName, &catType); err != nil {
		return core.Transaction{}, err
	}
	return buildTransaction(tx.ID, date, txType, amount, note, catID, catName, catType)
}

func buildTransaction(id, date, txType, amount, note string, catID, catName, catType *string) (core.Transaction, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, err)
	}
	tx := core.Transaction{ID: id, Date: d, Type: core.TxType(txType), Note: note}
	tx.Amount, _ = core.ParseAmount(amount)
	if catID != nil && catName != nil {
		ref := &core.CategoryRef{ID: *catID, Name: *catName}
		if catType != nil {
			ref.Type = core.TxType(*catType)
		}
		tx.CategoryID = *catID
		tx.Category = ref
	}
	return tx, nil
}

func (r *Repository) ListMonthGroups(ctx context.Context) ([]core.MonthGroup, error) {
	rows, err := r.pool.Query(ctx, selectTransactions+` ORDER BY t.date DESC, t.created_at DESC, t.id`)
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

func (r *Repository) getTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := scanTransaction(r.pool.QueryRow(ctx, selectTransactions+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *Repository) checkCategory(ctx context.Context, in core.TransactionInput) error {
	if in.CategoryID == "" {
		return nil
	}
	var catType string
	err := r.pool.QueryRow(ctx, `SELECT type FROM categories WHERE id = $1`, in.CategoryID).Scan(&catType)
	if errors.Is(err, pgx.ErrNoRows) {
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

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := r.checkCategory(ctx, in); err != nil {
		return core.Transaction{}, err
	}
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, date, type, amount, category_id, note) VALUES ($1, $2::date, $3, $4::numeric, $5, $6)`,
		id, in.Date.String(), string(in.Type), in.Amount.StringFixed(2), optional(in.CategoryID), in.Note)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to Postgres", "id", id, "type", in.Type, "amount", in.Amount.StringFixed(2))
	return r.getTransaction(ctx, id)
}

func (r *Repository) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := r.checkCategory(ctx, in); err != nil {
		return core.Transaction{}, err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET date = $1::date, type = $2, amount = $3::numeric, category_id = $4, note = $5, updated_at = now() WHERE id = $6`,
		in.Date.String(), string(in.Type), in.Amount.StringFixed(2), optional(in.CategoryID), in.Note, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	return r.getTransaction(ctx, id)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, type, icon FROM categories ORDER BY type, lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var catType string
		if err := rows.Scan(&c.ID, &c.Name, &catType, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TxType(catType)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	var catType string
	err := r.pool.QueryRow(ctx, `SELECT id, name, type, icon FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &catType, &c.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.TxType(catType)
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *Repository) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Name: in.Name, Type: in.Type, Icon: in.Icon}
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name, type, icon) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, string(c.Type), c.Icon)
	if isUniqueViolation(err) {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id string, in core.CategoryInput) (core.Category, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, type = $2, icon = COALESCE(NULLIF($3, ''), icon) WHERE id = $4`,
		in.Name, string(in.Type), in.Icon, id)
	if isUniqueViolation(err) {
		return core.Category{}, ports.ErrDuplicateCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	return r.GetCategory(ctx, id)
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	return nil
}
