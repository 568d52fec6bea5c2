package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the canonical textual date form (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// parseLayout also accepts unpadded month and day (2024-1-5), which older
// databases contain.
const parseLayout = "2006-1-2"

// MonthLayout keys monthly totals (YYYY-MM).
const MonthLayout = "2006-01"

// MaxNameLength bounds the free-text label of an expense.
const MaxNameLength = 200

type (
	Money struct {
		Cents int64
	}

	// Expense is one persisted record. ID is assigned by the store.
	Expense struct {
		ID     int64
		Name   string
		Amount Money
		Date   string // YYYY-MM-DD, not validated until aggregated
	}
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMalformedDate = errors.New("malformed date")

	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = fmt.Errorf("name too long (max %d characters)", MaxNameLength)
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrZeroAmount    = errors.New("amount cannot be zero")
	ErrEmptyDate     = errors.New("empty date")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MalformedDateError is returned when a stored record's date cannot be parsed
// during aggregation.
type MalformedDateError struct {
	ID   int64
	Date string
	Err  error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("expense #%d has malformed date %q (want YYYY-MM-DD)", e.ID, e.Date)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

func (e *MalformedDateError) Is(target error) bool {
	return target == ErrMalformedDate
}

// ParseDate parses a YYYY-MM-DD string; month and day may omit their
// leading zero. Impossible calendar dates such as 2024-02-30 are rejected.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(parseLayout, strings.TrimSpace(s))
}

// Month returns the YYYY-MM bucket of the expense date.
func (e Expense) Month() (string, error) {
	t, err := ParseDate(e.Date)
	if err != nil {
		return "", &MalformedDateError{ID: e.ID, Date: e.Date, Err: err}
	}
	return t.Format(MonthLayout), nil
}

// Validate checks the fields the caller is responsible for. The date is only
// required to be present; its calendar correctness is checked at aggregation.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Err: ErrNameTooLong}
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if strings.TrimSpace(e.Date) == "" {
		return &ValidationError{Field: "date", Err: ErrEmptyDate}
	}
	return nil
}

// Validate accepts negative amounts (refunds, corrections) but not zero.
func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrZeroAmount
	}
	return nil
}
