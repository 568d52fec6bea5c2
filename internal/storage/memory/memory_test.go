package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func TestMemoryStoreAddListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Initialize(ctx))

	a, err := s.Add(ctx, "Coffee", core.Money{Cents: 450}, "2024-01-05")
	require.NoError(t, err)
	b, err := s.Add(ctx, "Rent", core.Money{Cents: 120000}, "2024-01-01")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{a, b}, list)

	require.NoError(t, s.Delete(ctx, a.ID))
	require.NoError(t, s.Delete(ctx, 999), "absent id is a no-op")

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{b}, list)

	// IDs are not reused after deletion.
	c, err := s.Add(ctx, "Tea", core.Money{Cents: 300}, "2024-01-06")
	require.NoError(t, err)
	assert.Greater(t, c.ID, b.ID)

	require.NoError(t, s.Clear(ctx))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(core.Expense{Name: "a", Amount: core.Money{Cents: 1}, Date: "2024-01-01"})

	list, _ := s.List(ctx)
	list[0].Name = "mutated"

	again, _ := s.List(ctx)
	assert.Equal(t, "a", again[0].Name)
	assert.Equal(t, int64(1), again[0].ID)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	list, _ := s.List(context.Background())
	assert.Empty(t, list)

	_, err = NewFromFile(dir)
	require.Error(t, err, "an unreadable seed must not yield an empty store")
	assert.ErrorContains(t, err, "read seed file")

	path := filepath.Join(dir, "seed_expenses.txt")
	content := "# name;amount;date\nCoffee;4.50;2024-01-05\n\nRent; 1200 ;2024-01-01\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err = NewFromFile(path)
	require.NoError(t, err)
	list, _ = s.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, core.Expense{ID: 1, Name: "Coffee", Amount: core.Money{Cents: 450}, Date: "2024-01-05"}, list[0])
	assert.Equal(t, int64(120000), list[1].Amount.Cents)

	require.NoError(t, os.WriteFile(path, []byte("bad line\n"), 0o644))
	_, err = NewFromFile(path)
	assert.Error(t, err)
}
