package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expenses/internal/amqp"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/ports"
)

// EventPublisher announces store mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
	Close() error
}

// ExpenseService validates input, drives the store and publishes change
// events. It never refreshes any view; callers re-query after a mutation.
type ExpenseService struct {
	store     ports.Store
	publisher EventPublisher
	logger    *applog.Logger
	audit     *applog.StructuredLogger
}

// NewExpenseService wires a store and an optional publisher (nil disables
// change events).
func NewExpenseService(store ports.Store, publisher EventPublisher) *ExpenseService {
	return NewExpenseServiceWithLogger(store, publisher, applog.New(applog.DefaultConfig()))
}

func NewExpenseServiceWithLogger(store ports.Store, publisher EventPublisher, logger *applog.Logger) *ExpenseService {
	logger = logger.WithComponent(applog.ComponentExpense)
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		audit:     applog.NewStructuredLogger(logger),
	}
}

// Initialize prepares the backing store. Safe on every start.
func (s *ExpenseService) Initialize(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	return nil
}

// AddExpense validates raw user input and stores a new expense. The date
// must be present but is not calendar-checked here.
func (s *ExpenseService) AddExpense(ctx context.Context, name, amount, date string) (core.Expense, error) {
	name = strings.TrimSpace(name)
	date = strings.TrimSpace(date)

	cents, err := core.ParseAmount(amount)
	if err != nil {
		verr := &core.ValidationError{Field: "amount", Err: err}
		s.audit.LogError(ctx, "Rejected expense", verr, applog.OpValidate, nil)
		return core.Expense{}, verr
	}

	e := core.Expense{Name: name, Amount: core.Money{Cents: cents}, Date: date}
	if err := e.Validate(); err != nil {
		s.audit.LogError(ctx, "Rejected expense", err, applog.OpValidate, nil)
		return core.Expense{}, err
	}

	created, err := s.store.Add(ctx, e.Name, e.Amount, e.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.audit.LogExpenseCreated(ctx, created)

	s.publish(ctx, amqp.NewCreatedEvent(created))
	return created, nil
}

// DeleteExpense removes one expense by its real id. Unknown ids are ignored.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.logger.DebugContext(ctx, "Expense deleted", applog.FieldExpenseID, id)

	s.publish(ctx, amqp.NewDeletedEvent(id))
	return nil
}

// ClearExpenses removes every stored expense.
func (s *ExpenseService) ClearExpenses(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense history cleared", applog.FieldOperation, applog.OpClear)

	s.publish(ctx, amqp.NewClearedEvent())
	return nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// MonthlyTotals aggregates a fresh snapshot of the store. A single
// malformed date fails the whole report.
func (s *ExpenseService) MonthlyTotals(ctx context.Context) (core.MonthlyTotals, error) {
	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := core.ComputeMonthlyTotals(expenses)
	if err != nil {
		s.audit.LogError(ctx, "Monthly totals unavailable", err, applog.OpTotals, nil)
		return nil, err
	}
	return totals, nil
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.FieldError, err,
			applog.FieldEventType, ev.Type,
			applog.FieldExpenseID, ev.ID,
			applog.FieldMessageID, ev.MessageID)
		// Don't fail the mutation, it is already stored
	}
}

// Close closes both storage and the event publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}
