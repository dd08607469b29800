package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

type (
	Kind string

	Frequency string

	// Date is a calendar date with no time component, normalized to UTC midnight.
	Date struct {
		time.Time
	}

	// Recurrence describes how a transaction repeats. EndDate is inclusive
	// and optional; a rule without an end date marks a single anchor record.
	Recurrence struct {
		Frequency Frequency `json:"frequency"`
		EndDate   *Date     `json:"end_date,omitempty"`
	}

	// TransactionRecord is one ledger entry. AmountCents is signed: negative
	// for expenses, positive for income. ID is assigned by the store on insert.
	TransactionRecord struct {
		ID          string      `json:"id,omitempty"`
		OwnerID     string      `json:"owner_id"`
		Kind        Kind        `json:"kind"`
		Category    string      `json:"category"`
		AmountCents int64       `json:"amount_cents"`
		Date        Date        `json:"date"`
		Note        string      `json:"note,omitempty"`
		Recurrence  *Recurrence `json:"recurrence,omitempty"`
		CreatedAt   time.Time   `json:"created_at,omitempty"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrEmptyOwner      = errors.New("empty owner id")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidRule     = errors.New("invalid recurrence rule")
	ErrAmountSign      = errors.New("amount sign does not match kind")
	ErrEndBeforeStart  = errors.New("end date before start date")
	ErrUnknownFrequency = errors.New("unknown frequency")
)

// DefaultCategories are the built-in category names every owner starts
// with, expense categories first, then income categories.
var DefaultCategories = []string{
	"Food", "Transport", "Shopping", "Bills", "Entertainment", "Other",
	"Salary", "Business", "Investments", "Gifts", "Other Income",
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM partition key for this date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// MonthKeyOf derives the YYYY-MM key from an instant.
func MonthKeyOf(t time.Time) string {
	return t.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (f Frequency) Validate() error {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return nil
	default:
		return ErrUnknownFrequency
	}
}

func (k Kind) Validate() error {
	switch k {
	case KindExpense, KindIncome:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Sign returns the amount sign this kind requires: -1 for expenses, +1 for income.
func (k Kind) Sign() int64 {
	if k == KindExpense {
		return -1
	}
	return 1
}

func (r Recurrence) Validate() error {
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if r.EndDate != nil {
		if err := r.EndDate.Validate(); err != nil {
			return ErrInvalidRule
		}
	}
	return nil
}

func (tr TransactionRecord) Validate() error {
	if strings.TrimSpace(tr.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := tr.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tr.Category) == "" {
		return ErrEmptyCategory
	}
	if tr.AmountCents == 0 {
		return ErrInvalidAmount
	}
	if tr.Kind == KindExpense && tr.AmountCents > 0 || tr.Kind == KindIncome && tr.AmountCents < 0 {
		return ErrAmountSign
	}
	if err := tr.Date.Validate(); err != nil {
		return err
	}
	if tr.Recurrence != nil {
		if err := tr.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}
