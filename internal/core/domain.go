package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// UncategorizedLabel is shown for transactions without a resolvable category.
const UncategorizedLabel = "Uncategorized"

const dateLayout = "2006-01-02"

type (
	TxType string

	// Date is a calendar date without time-of-day semantics.
	Date struct {
		time.Time
	}

	CategoryRef struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type TxType `json:"type,omitempty"`
	}

	Transaction struct {
		ID         string          `json:"id"`
		Date       Date            `json:"date"`
		Type       TxType          `json:"type"`
		Amount     decimal.Decimal `json:"amount"`
		CategoryID string          `json:"categoryId,omitempty"`
		Category   *CategoryRef    `json:"category,omitempty"`
		Note       string          `json:"note,omitempty"`
	}

	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type TxType `json:"type"`
		Icon string `json:"icon,omitempty"` // base64
	}

	// MonthGroup bundles every transaction of one calendar month with the
	// server-side totals. Totals may be missing on the wire.
	MonthGroup struct {
		Month        string              `json:"month"`
		Transactions []Transaction       `json:"transactions"`
		TotalIncome  decimal.NullDecimal `json:"totalIncome"`
		TotalExpense decimal.NullDecimal `json:"totalExpense"`
	}

	// FilteredMonthGroup is a MonthGroup scoped by filters. Totals and Net
	// always describe the whole month.
	FilteredMonthGroup struct {
		Month        string          `json:"month"`
		Transactions []Transaction   `json:"transactions"`
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		Net          decimal.Decimal `json:"net"`
	}

	TransactionInput struct {
		Date       Date            `json:"date"`
		Type       TxType          `json:"type"`
		Amount     decimal.Decimal `json:"amount"`
		CategoryID string          `json:"categoryId,omitempty"`
		Note       string          `json:"note,omitempty"`
	}

	CategoryInput struct {
		Name string `json:"name"`
		Type TxType `json:"type"`
		Icon string `json:"icon,omitempty"`
	}
)

var (
	ErrMissingDate   = errors.New("date is required")
	ErrFutureDate    = errors.New("date cannot be in the future")
	ErrInvalidType   = errors.New("type must be income or expense")
	ErrInvalidAmount = errors.New("amount must be at least 0.01")
	ErrNoteTooLong   = errors.New("note too long (max 500 characters)")
	ErrEmptyName     = errors.New("name is required")
	ErrNameTooLong   = errors.New("name too long (max 60 characters)")
)

var minAmount = decimal.New(1, -2)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD and RFC3339 timestamps, keeping only the calendar day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// CategoryName returns the resolved category name or UncategorizedLabel.
func (t Transaction) CategoryName() string {
	if t.Category == nil || strings.TrimSpace(t.Category.Name) == "" {
		return UncategorizedLabel
	}
	return t.Category.Name
}

// ResolvedCategoryID returns the category id, preferring the explicit reference.
func (t Transaction) ResolvedCategoryID() string {
	if t.CategoryID != "" {
		return t.CategoryID
	}
	if t.Category != nil {
		return t.Category.ID
	}
	return ""
}

// UnmarshalJSON never fails on a bad amount or date: non-numeric amounts
// decode to zero and unparseable dates to the zero Date, so one broken row
// cannot abort a whole month. Callers that need a date check Date.IsZero.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	type alias Transaction
	var raw struct {
		alias
		Date   json.RawMessage `json:"date"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Transaction(raw.alias)
	t.Amount = LenientDecimal(raw.Amount)
	t.Date = Date{}
	if len(raw.Date) > 0 {
		var d Date
		if err := d.UnmarshalJSON(raw.Date); err == nil {
			t.Date = d
		}
	}
	return nil
}

// UnmarshalJSON tolerates missing or malformed totals by leaving them unset.
func (g *MonthGroup) UnmarshalJSON(b []byte) error {
	var raw struct {
		Month        string          `json:"month"`
		Transactions []Transaction   `json:"transactions"`
		TotalIncome  json.RawMessage `json:"totalIncome"`
		TotalExpense json.RawMessage `json:"totalExpense"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	g.Month = raw.Month
	g.Transactions = raw.Transactions
	g.TotalIncome = lenientNullDecimal(raw.TotalIncome)
	g.TotalExpense = lenientNullDecimal(raw.TotalExpense)
	return nil
}

// Totals returns the server rollup when present, otherwise the sums derived
// from the transaction list.
func (g MonthGroup) Totals() (income, expense decimal.Decimal) {
	if g.TotalIncome.Valid && g.TotalExpense.Valid {
		return g.TotalIncome.Decimal, g.TotalExpense.Decimal
	}
	derivedIncome, derivedExpense := SumByType(g.Transactions)
	income, expense = derivedIncome, derivedExpense
	if g.TotalIncome.Valid {
		income = g.TotalIncome.Decimal
	}
	if g.TotalExpense.Valid {
		expense = g.TotalExpense.Decimal
	}
	return income, expense
}

// Net is income minus expense for the month.
func (g MonthGroup) Net() decimal.Decimal {
	income, expense := g.Totals()
	return income.Sub(expense)
}

// SumByType adds up income and expense amounts. Unknown types are ignored.
func SumByType(txs []Transaction) (income, expense decimal.Decimal) {
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			income = income.Add(tx.Amount)
		case Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense
}

func (in TransactionInput) Validate(now time.Time) error {
	if in.Date.IsZero() {
		return ErrMissingDate
	}
	today := NewDate(now.Year(), int(now.Month()), now.Day())
	if in.Date.After(today.Time) {
		return ErrFutureDate
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if in.Amount.LessThan(minAmount) {
		return ErrInvalidAmount
	}
	if len(in.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}

// Normalize trims the note and rounds the amount to cents.
func (in TransactionInput) Normalize() TransactionInput {
	in.Note = strings.TrimSpace(in.Note)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Amount = in.Amount.Round(2)
	return in
}

func (in CategoryInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 60 {
		return ErrNameTooLong
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (in CategoryInput) Normalize() CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	return in
}
