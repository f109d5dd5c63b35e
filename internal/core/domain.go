package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	maxItemLength = 200
)

type (
	// Date is a calendar day in UTC.
	Date struct {
		time.Time
	}

	// Month is the year-month partition key used to aggregate expenses.
	Month struct {
		Year  int
		Month time.Month
	}

	// ExpenseRecord is one logged spend event. Records are immutable once stored.
	ExpenseRecord struct {
		ID     int64
		Date   Date
		Item   string
		Amount int64
		Month  Month
	}

	// BudgetEntry is the configured budget for one month.
	BudgetEntry struct {
		Month  Month
		Amount int64
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Invalid("date", "date cannot be zero")
	}
	return nil
}

// Month returns the partition key the date belongs to.
func (d Date) Month() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

// NewMonth builds a Month, normalising out-of-range months (13 -> January next year).
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, Invalid("month", fmt.Sprintf("%q is not a YYYY-MM month", s))
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Previous returns the calendar month immediately before m, crossing year boundaries.
func (m Month) Previous() Month {
	return NewMonth(m.Year, m.Month-1)
}

// Next returns the calendar month immediately after m.
func (m Month) Next() Month {
	return NewMonth(m.Year, m.Month+1)
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// NewExpenseRecord validates the input and derives the month key from date.
func NewExpenseRecord(date Date, item string, amount int64) (ExpenseRecord, error) {
	rec := ExpenseRecord{
		Date:   date,
		Item:   strings.TrimSpace(item),
		Amount: amount,
		Month:  date.Month(),
	}
	if err := rec.Validate(); err != nil {
		return ExpenseRecord{}, err
	}
	return rec, nil
}

// Validate checks the invariants every stored record must satisfy. Item emptiness is
// enforced by the service layer, not here, so legacy rows without a label still load.
func (e ExpenseRecord) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if len(e.Item) > maxItemLength {
		return Invalid("item", fmt.Sprintf("item too long (max %d characters)", maxItemLength))
	}
	return nil
}

// ValidateAmount rejects non-positive expense amounts.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return Invalid("amount", "amount must be greater than zero")
	}
	return nil
}

// ValidateItem rejects blank labels.
func ValidateItem(item string) error {
	if strings.TrimSpace(item) == "" {
		return Invalid("item", "item cannot be empty")
	}
	return nil
}

// ValidateBudget rejects negative budget amounts.
func ValidateBudget(amount int64) error {
	if amount < 0 {
		return Invalid("budget", "budget cannot be negative")
	}
	return nil
}
