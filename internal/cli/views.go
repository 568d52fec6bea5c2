package cli

import (
	"errors"
	"fmt"
	"io"

	"expenses/internal/core"
)

const emptyListing = "No expenses recorded."

// ExpenseView is the rendered form of one stored expense.
type ExpenseView struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Amount      string `json:"amount" yaml:"amount"`
	AmountCents int64  `json:"amount_cents" yaml:"amount_cents"`
	Date        string `json:"date" yaml:"date"`
}

func newExpenseView(e core.Expense) ExpenseView {
	return ExpenseView{
		ID:          e.ID,
		Name:        e.Name,
		Amount:      e.Amount.String(),
		AmountCents: e.Amount.Cents,
		Date:        e.Date,
	}
}

func newExpenseViews(expenses []core.Expense) []ExpenseView {
	out := make([]ExpenseView, len(expenses))
	for i, e := range expenses {
		out[i] = newExpenseView(e)
	}
	return out
}

// Line formats the view as "ID - NAME - $AMOUNT on DATE".
func (v ExpenseView) Line() string {
	return fmt.Sprintf("%d - %s - $%s on %s", v.ID, v.Name, v.Amount, v.Date)
}

// ListResult is the full expense listing.
type ListResult struct {
	Expenses []ExpenseView `json:"expenses" yaml:"expenses"`
	// Numbered prefixes each row with its 1-based position for the shell.
	Numbered bool `json:"-" yaml:"-"`
}

func (r ListResult) RenderText(w io.Writer) error {
	if len(r.Expenses) == 0 {
		_, err := fmt.Fprintln(w, emptyListing)
		return err
	}
	for i, v := range r.Expenses {
		var err error
		if r.Numbered {
			_, err = fmt.Fprintf(w, "%3d) %s\n", i+1, v.Line())
		} else {
			_, err = fmt.Fprintln(w, v.Line())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MutationResult reports a change and the listing that follows it.
type MutationResult struct {
	Action   string        `json:"action" yaml:"action"`
	Added    *ExpenseView  `json:"added,omitempty" yaml:"added,omitempty"`
	Deleted  int64         `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Expenses []ExpenseView `json:"expenses" yaml:"expenses"`
	Numbered bool          `json:"-" yaml:"-"`
}

func (r MutationResult) RenderText(w io.Writer) error {
	var header string
	switch r.Action {
	case "add":
		header = fmt.Sprintf("Added expense #%d.", r.Added.ID)
	case "delete":
		header = fmt.Sprintf("Deleted expense #%d.", r.Deleted)
	case "clear":
		header = "Cleared expense history."
	}
	if header != "" {
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
	}
	return ListResult{Expenses: r.Expenses, Numbered: r.Numbered}.RenderText(w)
}

// MonthTotalView is one line of the monthly report.
type MonthTotalView struct {
	Month      string `json:"month" yaml:"month"`
	Total      string `json:"total" yaml:"total"`
	TotalCents int64  `json:"total_cents" yaml:"total_cents"`
}

// TotalsResult is the monthly report in display order.
type TotalsResult struct {
	Months []MonthTotalView `json:"months" yaml:"months"`
}

func newTotalsResult(t core.MonthlyTotals) TotalsResult {
	out := TotalsResult{Months: make([]MonthTotalView, len(t))}
	for i, mt := range t {
		out.Months[i] = MonthTotalView{Month: mt.Month, Total: mt.Total.String(), TotalCents: mt.Total.Cents}
	}
	return out
}

func (r TotalsResult) RenderText(w io.Writer) error {
	if len(r.Months) == 0 {
		_, err := fmt.Fprintln(w, emptyListing)
		return err
	}
	for _, m := range r.Months {
		if _, err := fmt.Fprintf(w, "%s: $%s\n", m.Month, m.Total); err != nil {
			return err
		}
	}
	return nil
}

// MessageResult is a plain confirmation.
type MessageResult struct {
	Message string `json:"message" yaml:"message"`
}

func (r MessageResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Message)
	return err
}

// usageError marks bad command input such as an unparsable id.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// classify maps an operation error to its error code, exit code and the
// message shown to the user.
func classify(err error) (code string, exit int, message string) {
	var uerr *usageError
	switch {
	case errors.As(err, &uerr):
		return CodeUsage, ExitCommandError, uerr.msg
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrEmptyAmount), errors.Is(err, core.ErrEmptyDate):
		return CodeValidation, ExitFailure, "All fields are required."
	case errors.Is(err, core.ErrValidation):
		return CodeValidation, ExitFailure, err.Error()
	case errors.Is(err, core.ErrMalformedDate):
		return CodeMalformedDate, ExitFailure, err.Error()
	default:
		return CodeStorage, ExitFailure, err.Error()
	}
}
