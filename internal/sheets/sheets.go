// Package sheets keeps the ledger in a Google spreadsheet. One tab holds
// transactions and another holds categories; rows can be listed and appended
// but not rewritten.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

var (
	transactionHeaders = []string{"ID", "Date", "Type", "Amount", "Category", "Note"}
	categoryHeaders    = []string{"ID", "Name", "Type", "Icon"}
)

type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	CategoriesSheet   string
	// Inline service account JSON wins over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	// An OAuth client switches to user credentials; the token comes from
	// the sheets-auth command.
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

// valuesAPI is the slice of the Sheets values service the ledger needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Append(ctx context.Context, rng string, rows [][]any) error
}

type Client struct {
	values            valuesAPI
	transactionsSheet string
	categoriesSheet   string
}

var _ ports.Ledger = (*Client)(nil)

// NewClient connects to the spreadsheet with service account credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg), nil
}

func newClient(values valuesAPI, cfg Config) *Client {
	c := &Client{
		values:            values,
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		categoriesSheet:   strings.TrimSpace(cfg.CategoriesSheet),
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = "Transactions"
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = "Categories"
	}
	return c
}

// newSheetsService authenticates with a user OAuth token when an OAuth
// client is configured, and with a service account otherwise.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	if cfg.usesOAuth() {
		opt, err := oauthOption(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using OAuth user credentials")
		service, err := gsheet.NewService(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", cfg.CredentialsFile, "size", len(b))
		credentialsJSON = b
	default:
		return nil, errors.New("missing credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE or an OAuth client and token)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (s *serviceValues) Append(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (c *Client) txRange() string  { return c.transactionsSheet + "!A:F" }
func (c *Client) catRange() string { return c.categoriesSheet + "!A:D" }

func (c *Client) readCategories(ctx context.Context) ([]core.Category, error) {
	values, err := c.values.Get(ctx, c.catRange())
	if err != nil {
		return nil, err
	}
	return parseCategories(values)
}

func (c *Client) ListMonthGroups(ctx context.Context) ([]core.MonthGroup, error) {
	values, err := c.values.Get(ctx, c.txRange())
	if err != nil {
		return nil, err
	}
	txs, err := parseTransactions(values)
	if err != nil {
		return nil, err
	}
	cats, err := c.readCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]core.Category, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = cat
	}
	for i := range txs {
		if cat, ok := byID[txs[i].CategoryID]; ok {
			txs[i].Category = &core.CategoryRef{ID: cat.ID, Name: cat.Name, Type: cat.Type}
		} else {
			txs[i].CategoryID = ""
		}
	}
	return core.GroupByMonth(txs), nil
}

func (c *Client) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         uuid.NewString(),
		Date:       in.Date,
		Type:       in.Type,
		Amount:     in.Amount,
		CategoryID: in.CategoryID,
		Note:       in.Note,
	}
	if in.CategoryID != "" {
		cat, err := c.GetCategory(ctx, in.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		if cat.Type != in.Type {
			return core.Transaction{}, ports.ErrCategoryMismatch
		}
		tx.Category = &core.CategoryRef{ID: cat.ID, Name: cat.Name, Type: cat.Type}
	}
	if err := c.ensureHeader(ctx, c.txRange(), transactionHeaders); err != nil {
		return core.Transaction{}, err
	}
	row := []any{tx.ID, tx.Date.String(), string(tx.Type), tx.Amount.StringFixed(2), tx.CategoryID, tx.Note}
	if err := c.values.Append(ctx, c.txRange(), [][]any{row}); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction appended to sheet", "id", tx.ID, "sheet", c.transactionsSheet)
	return tx, nil
}

func (c *Client) UpdateTransaction(context.Context, string, core.TransactionInput) (core.Transaction, error) {
	return core.Transaction{}, ports.ErrReadOnly
}

func (c *Client) DeleteTransaction(context.Context, string) error {
	return ports.ErrReadOnly
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	return c.readCategories(ctx)
}

func (c *Client) GetCategory(ctx context.Context, id string) (core.Category, error) {
	cats, err := c.readCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, cat := range cats {
		if cat.ID == id {
			return cat, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
}

func (c *Client) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	cats, err := c.readCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, cat := range cats {
		if cat.Type == in.Type && strings.EqualFold(cat.Name, in.Name) {
			return core.Category{}, ports.ErrDuplicateCategory
		}
	}
	if err := c.ensureHeader(ctx, c.catRange(), categoryHeaders); err != nil {
		return core.Category{}, err
	}
	cat := core.Category{ID: uuid.NewString(), Name: in.Name, Type: in.Type, Icon: in.Icon}
	if err := c.values.Append(ctx, c.catRange(), [][]any{{cat.ID, cat.Name, string(cat.Type), cat.Icon}}); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

func (c *Client) UpdateCategory(context.Context, string, core.CategoryInput) (core.Category, error) {
	return core.Category{}, ports.ErrReadOnly
}

func (c *Client) DeleteCategory(context.Context, string) error {
	return ports.ErrReadOnly
}

// ensureHeader writes the header row into an empty tab.
func (c *Client) ensureHeader(ctx context.Context, rng string, headers []string) error {
	values, err := c.values.Get(ctx, rng)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		return nil
	}
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return c.values.Append(ctx, rng, [][]any{row})
}
