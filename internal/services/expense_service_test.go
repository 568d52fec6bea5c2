package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/amqp"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/storage/memory"
)

type fakePublisher struct {
	events []*amqp.ExpenseEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishExpenseEvent(_ context.Context, ev *amqp.ExpenseEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func (f *fakePublisher) types() []amqp.EventType {
	out := make([]amqp.EventType, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Type
	}
	return out
}

// failingStore wraps memory.Store and fails selected operations.
type failingStore struct {
	*memory.Store
	listErr  error
	closeErr error
}

func (f *failingStore) List(ctx context.Context) ([]core.Expense, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.List(ctx)
}

func (f *failingStore) Close() error { return f.closeErr }

func newTestService(t *testing.T, pub EventPublisher) (*ExpenseService, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "text", Output: buf})
	svc := NewExpenseServiceWithLogger(memory.New(), pub, logger)
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, buf
}

func TestExpenseService_AddAndList(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	created, err := svc.AddExpense(ctx, "  Coffee ", "4.50", " 2024-01-05 ")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", created.Name)
	assert.Equal(t, int64(450), created.Amount.Cents)
	assert.Equal(t, "2024-01-05", created.Date)
	assert.NotZero(t, created.ID)

	list, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{created}, list)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventCreated, pub.events[0].Type)
	assert.Equal(t, created, pub.events[0].Expense())
}

func TestExpenseService_AddValidation(t *testing.T) {
	tests := []struct {
		name   string
		input  [3]string
		field  string
		target error
	}{
		{"empty name", [3]string{"  ", "1", "2024-01-01"}, "name", core.ErrEmptyName},
		{"long name", [3]string{strings.Repeat("x", core.MaxNameLength+1), "1", "2024-01-01"}, "name", core.ErrNameTooLong},
		{"empty amount", [3]string{"Coffee", "", "2024-01-01"}, "amount", core.ErrEmptyAmount},
		{"non-numeric amount", [3]string{"Coffee", "abc", "2024-01-01"}, "amount", core.ErrInvalidAmount},
		{"zero amount", [3]string{"Coffee", "0.00", "2024-01-01"}, "amount", core.ErrZeroAmount},
		{"empty date", [3]string{"Coffee", "1", " "}, "date", core.ErrEmptyDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			pub := &fakePublisher{}
			svc, _ := newTestService(t, pub)

			_, err := svc.AddExpense(ctx, tt.input[0], tt.input[1], tt.input[2])

			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.ErrorIs(t, err, tt.target)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			list, err := svc.ListExpenses(ctx)
			require.NoError(t, err)
			assert.Empty(t, list, "rejected input must not be stored")
			assert.Empty(t, pub.events)
		})
	}
}

func TestExpenseService_AcceptsRefundsAndUncheckedDates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	refund, err := svc.AddExpense(ctx, "Refund", "-19.99", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(-1999), refund.Amount.Cents)

	_, err = svc.AddExpense(ctx, "Typo", "5", "not-a-date")
	require.NoError(t, err, "dates are only checked when aggregated")
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	a, err := svc.AddExpense(ctx, "a", "1", "2024-01-01")
	require.NoError(t, err)
	b, err := svc.AddExpense(ctx, "b", "2", "2024-01-02")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteExpense(ctx, a.ID))
	require.NoError(t, svc.DeleteExpense(ctx, 999), "absent id is a no-op")

	list, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{b}, list)

	assert.Equal(t, []amqp.EventType{amqp.EventCreated, amqp.EventCreated, amqp.EventDeleted, amqp.EventDeleted}, pub.types())
	assert.Equal(t, a.ID, pub.events[2].ID)
}

func TestExpenseService_Clear(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	for _, n := range []string{"a", "b", "c"} {
		_, err := svc.AddExpense(ctx, n, "1", "2024-01-01")
		require.NoError(t, err)
	}
	require.NoError(t, svc.ClearExpenses(ctx))

	list, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, amqp.EventCleared, pub.events[len(pub.events)-1].Type)
}

func TestExpenseService_MonthlyTotals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	for _, in := range [][3]string{
		{"Coffee", "4.50", "2024-01-05"},
		{"Rent", "1200.00", "2024-01-01"},
		{"Coffee", "4.75", "2024-02-03"},
	} {
		_, err := svc.AddExpense(ctx, in[0], in[1], in[2])
		require.NoError(t, err)
	}

	totals, err := svc.MonthlyTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.MonthlyTotals{
		{Month: "2024-01", Total: core.Money{Cents: 120450}},
		{Month: "2024-02", Total: core.Money{Cents: 475}},
	}, totals)
}

func TestExpenseService_MonthlyTotalsMalformedDate(t *testing.T) {
	ctx := context.Background()
	svc, logs := newTestService(t, nil)

	_, err := svc.AddExpense(ctx, "Coffee", "4.50", "2024-01-05")
	require.NoError(t, err)
	bad, err := svc.AddExpense(ctx, "Typo", "1", "not-a-date")
	require.NoError(t, err)

	totals, err := svc.MonthlyTotals(ctx)
	assert.Nil(t, totals)
	require.ErrorIs(t, err, core.ErrMalformedDate)

	var merr *core.MalformedDateError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, bad.ID, merr.ID)
	assert.Contains(t, logs.String(), applog.ErrorTypeMalformedDate)
}

func TestExpenseService_PublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, logs := newTestService(t, pub)

	created, err := svc.AddExpense(ctx, "Coffee", "4.50", "2024-01-05")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpense(ctx, created.ID))
	require.NoError(t, svc.ClearExpenses(ctx))

	assert.Contains(t, logs.String(), "Failed to publish expense event")
	assert.Contains(t, logs.String(), "broker down")
}

func TestExpenseService_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.New(), listErr: errors.New("disk gone")}
	svc := NewExpenseService(store, nil)

	_, err := svc.ListExpenses(ctx)
	assert.ErrorContains(t, err, "disk gone")

	_, err = svc.MonthlyTotals(ctx)
	assert.ErrorContains(t, err, "disk gone")
	assert.NotErrorIs(t, err, core.ErrMalformedDate)
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("closes store and publisher", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewExpenseService(memory.New(), pub)

		require.NoError(t, svc.Close())
		assert.True(t, pub.closed)
	})

	t.Run("nil publisher", func(t *testing.T) {
		svc := NewExpenseService(memory.New(), nil)
		assert.NoError(t, svc.Close())
	})

	t.Run("store error is reported", func(t *testing.T) {
		svc := NewExpenseService(&failingStore{Store: memory.New(), closeErr: errors.New("busy")}, nil)
		assert.ErrorContains(t, svc.Close(), "storage: busy")
	})
}
