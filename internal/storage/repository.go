package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
}

// NewSQLiteRepository opens the database file, creating its directory if
// needed. Call Initialize before the first query.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single writer; each operation borrows the connection for one statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}, nil
}

// Initialize creates the expenses table if it does not exist yet.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	version, err := migrateSchema(r.path)
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	logger(ctx).DebugContext(ctx, "Expense schema ready",
		applog.FieldDBPath, r.path,
		"schema_version", version)
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements ports.ExpenseWriter. No validation happens here.
func (r *SQLiteRepository) Add(ctx context.Context, name string, amount core.Money, date string) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Name:   sql.NullString{String: name, Valid: true},
		Amount: sql.NullFloat64{Float64: amount.Float(), Valid: true},
		Date:   sql.NullString{String: date, Valid: true},
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	e := toCore(row)
	logger(ctx).InfoContext(ctx, "Expense saved to SQLite",
		applog.NewFields().WithExpense(e.ID, e.Name, e.Amount.Cents, e.Date).ToSlice()...)

	return e, nil
}

// Delete implements ports.ExpenseDeleter. Deleting an unknown id is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		logger(ctx).DebugContext(ctx, "Delete of absent expense ignored", applog.FieldExpenseID, id)
		return nil
	}
	logger(ctx).InfoContext(ctx, "Expense deleted from SQLite", applog.FieldExpenseID, id)
	return nil
}

// Clear implements ports.ExpenseDeleter.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	n, err := r.queries.DeleteAllExpenses(ctx)
	if err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	logger(ctx).InfoContext(ctx, "Expense history cleared", applog.FieldCount, n)
	return nil
}

// List implements ports.ExpenseLister. Rows come back in id order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = toCore(row)
	}
	return expenses, nil
}

func logger(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentStorage)
}

func toCore(row Expense) core.Expense {
	return core.Expense{
		ID:     row.ID,
		Name:   row.Name.String,
		Amount: core.MoneyFromFloat(row.Amount.Float64),
		Date:   row.Date.String,
	}
}
