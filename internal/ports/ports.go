package ports

import (
	"context"

	"expenses/internal/core"
)

// Ports implemented by the storage backends.
type (
	ExpenseWriter interface {
		// Add stores a new record and returns it with its assigned ID.
		Add(ctx context.Context, name string, amount core.Money, date string) (core.Expense, error)
	}

	ExpenseDeleter interface {
		// Delete removes one record. An unknown id is not an error.
		Delete(ctx context.Context, id int64) error
		// Clear removes every record.
		Clear(ctx context.Context) error
	}

	// ExpenseLister returns the full snapshot of stored records.
	ExpenseLister interface {
		List(ctx context.Context) ([]core.Expense, error)
	}

	// Store is the complete persistence surface used by the expense service.
	Store interface {
		ExpenseWriter
		ExpenseDeleter
		ExpenseLister
		// Initialize ensures the backing table exists. Safe to call repeatedly.
		Initialize(ctx context.Context) error
		Close() error
	}
)
