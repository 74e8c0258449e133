package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	None    RecurrenceInterval = "none"
	Daily   RecurrenceInterval = "daily"
	Weekly  RecurrenceInterval = "weekly"
	Monthly RecurrenceInterval = "monthly"
	Yearly  RecurrenceInterval = "yearly"
)

type (
	TransactionKind string

	RecurrenceInterval string

	// Date is a civil calendar date pinned to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is immutable after creation. Amount is always positive;
	// the sign of its effect on a balance comes from Kind.
	Transaction struct {
		ID          int64
		Amount      Money
		Kind        TransactionKind
		OccurredOn  Date
		Recurring   bool
		Interval    RecurrenceInterval // meaningful only when Recurring
		Description string
		CategoryID  int64 // 0 means uncategorized
	}

	BudgetCategory struct {
		ID           int64
		Name         string
		MonthlyLimit *Money
		// TransactionIDs mirrors Transaction.CategoryID; the store keeps
		// both sides consistent.
		TransactionIDs []int64
	}

	// BalanceCheckpoint records the known balance at the end of Date.
	BalanceCheckpoint struct {
		Date   Date
		Amount Money // signed
	}

	// Snapshot is the read-only view the engines consume. Checkpoints are
	// sorted ascending by date, with at most one per date.
	Snapshot struct {
		Transactions []Transaction
		Categories   []BudgetCategory
		Checkpoints  []BalanceCheckpoint
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrInvalidInterval   = errors.New("invalid recurrence interval")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyCategoryName = errors.New("empty category name")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today truncates t to a civil date. Callers resolve "today" themselves so
// the engines stay clock-free.
func Today(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole number of days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (k TransactionKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (i RecurrenceInterval) Validate() error {
	switch i {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidInterval
	}
}

// Validate checks the transaction against the store invariants: positive
// amount, known kind, a real date, and a valid interval when recurring.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	if t.Recurring {
		if err := t.Interval.Validate(); err != nil {
			return err
		}
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Signed returns the transaction's effect on a balance: positive for income,
// negative for expense.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

func (c BudgetCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if c.MonthlyLimit != nil {
		if err := c.MonthlyLimit.Validate(); err != nil {
			return err
		}
	}
	return nil
}
