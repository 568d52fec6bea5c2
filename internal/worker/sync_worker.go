package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/ports"
)

// Mirror is the write side of the spreadsheet copy.
type Mirror interface {
	AppendExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ClearExpenses(ctx context.Context) error
	ReplaceAll(ctx context.Context, expenses []core.Expense) error
	WriteMonthlyTotals(ctx context.Context, totals core.MonthlyTotals) error
}

// SyncWorker keeps the spreadsheet mirror in step with the store.
type SyncWorker struct {
	store  ports.ExpenseLister
	mirror Mirror
}

func NewSyncWorker(store ports.ExpenseLister, mirror Mirror) *SyncWorker {
	return &SyncWorker{
		store:  store,
		mirror: mirror,
	}
}

// HandleEvent applies one change event to the mirror and then refreshes
// the totals tab. It matches amqp.EventHandler.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	logger(ctx).InfoContext(ctx, "Processing expense event",
		applog.FieldMessageID, ev.MessageID,
		applog.FieldEventType, ev.Type,
		applog.FieldExpenseID, ev.ID)

	var err error
	switch ev.Type {
	case amqp.EventCreated:
		err = w.mirror.AppendExpense(ctx, ev.Expense())
	case amqp.EventDeleted:
		err = w.mirror.DeleteExpense(ctx, ev.ID)
	case amqp.EventCleared:
		err = w.mirror.ClearExpenses(ctx)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if err != nil {
		return fmt.Errorf("apply %s event to mirror: %w", ev.Type, err)
	}

	return w.RefreshTotals(ctx)
}

// RefreshTotals recomputes the monthly report from the store. A malformed
// date leaves the previous report in place and is not treated as a failure,
// since retrying cannot fix stored data.
func (w *SyncWorker) RefreshTotals(ctx context.Context) error {
	expenses, err := w.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	return w.writeTotals(ctx, expenses)
}

func (w *SyncWorker) writeTotals(ctx context.Context, expenses []core.Expense) error {
	totals, err := core.ComputeMonthlyTotals(expenses)
	if errors.Is(err, core.ErrMalformedDate) {
		logger(ctx).WarnContext(ctx, "Skipping monthly totals refresh", applog.FieldError, err)
		return nil
	}
	if err != nil {
		return err
	}

	if err := w.mirror.WriteMonthlyTotals(ctx, totals.Sorted()); err != nil {
		return fmt.Errorf("write monthly totals: %w", err)
	}
	return nil
}

// Resync rebuilds the whole mirror from a fresh store snapshot. It recovers
// from lost events and worker downtime.
func (w *SyncWorker) Resync(ctx context.Context) error {
	expenses, err := w.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	if err := w.mirror.ReplaceAll(ctx, expenses); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	if err := w.writeTotals(ctx, expenses); err != nil {
		return err
	}

	logger(ctx).InfoContext(ctx, "Mirror resynced", applog.FieldCount, len(expenses))
	return nil
}

// RunPeriodicResync calls Resync every interval until ctx is done. Failures
// are logged and retried on the next tick.
func (w *SyncWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				logger(ctx).ErrorContext(ctx, "Periodic resync failed", applog.FieldError, err)
			}
		}
	}
}

func logger(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentWorker)
}
