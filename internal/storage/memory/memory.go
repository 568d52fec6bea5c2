package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"expenses/internal/core"
	"expenses/internal/ports"
)

var _ ports.Store = (*Store)(nil)

// Store keeps expenses in process memory. IDs are never reused.
type Store struct {
	mu     sync.Mutex
	lastID int64
	items  []core.Expense
}

// New returns a store holding the given records in order. Seed IDs are
// reassigned.
func New(seed ...core.Expense) *Store {
	s := &Store{}
	for _, e := range seed {
		s.lastID++
		e.ID = s.lastID
		s.items = append(s.items, e)
	}
	return s
}

// NewFromFile seeds a store from a text file with one "name;amount;date" per
// line. Blank lines and lines starting with '#' are skipped. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	seed := make([]core.Expense, 0, len(lines))
	for i, line := range lines {
		parts := strings.Split(line, ";")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%s: line %d: want name;amount;date", path, i+1)
		}
		cents, err := core.ParseAmount(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, i+1, err)
		}
		seed = append(seed, core.Expense{
			Name:   strings.TrimSpace(parts[0]),
			Amount: core.Money{Cents: cents},
			Date:   strings.TrimSpace(parts[2]),
		})
	}
	return New(seed...), nil
}

// Initialize is a no-op; the slice always exists.
func (s *Store) Initialize(_ context.Context) error { return nil }

func (s *Store) Add(_ context.Context, name string, amount core.Money, date string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	e := core.Expense{ID: s.lastID, Name: name, Amount: amount, Date: date}
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

// List returns a copy in insertion order.
func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...), nil
}

func (s *Store) Close() error { return nil }

// readLines returns the meaningful lines of path. Only a missing file is
// treated as empty.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return out, nil
}
