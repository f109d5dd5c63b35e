package memory

import (
	"context"
	"errors"
	"sync"

	"assetguard/internal/core"
	"assetguard/internal/ledger"
)

var errReadOnly = errors.New("ledger is offline (read-only view)")

// Store keeps the ledger in process memory. Used for local runs, tests and,
// in read-only form, as the empty view shown when the real backend is unreachable.
type Store struct {
	mu            sync.Mutex
	nextID        int64
	items         []core.ExpenseRecord
	budgets       map[core.Month]int64
	defaultBudget int64
	readOnly      bool
}

var _ ledger.Store = (*Store)(nil)

func New(defaultBudget int64) *Store {
	return &Store{
		nextID:        1,
		budgets:       map[core.Month]int64{},
		defaultBudget: defaultBudget,
	}
}

// NewReadOnly returns an empty store whose writes fail with core.ErrStorageUnavailable.
func NewReadOnly(defaultBudget int64) *Store {
	s := New(defaultBudget)
	s.readOnly = true
	return s
}

// ReadOnly reports whether the store rejects writes.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

func (s *Store) AppendExpense(_ context.Context, date core.Date, item string, amount int64) (int64, error) {
	rec, err := core.NewExpenseRecord(date, item, amount)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return 0, core.Unavailable("append expense", errReadOnly)
	}
	rec.ID = s.nextID
	s.nextID++
	s.items = append(s.items, rec)
	return rec.ID, nil
}

func (s *Store) QueryExpenses(_ context.Context, month core.Month) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseRecord, 0)
	for _, it := range s.items {
		if it.Month == month {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) DeleteExpenses(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return core.Unavailable("delete expenses", errReadOnly)
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if _, ok := drop[it.ID]; ok {
			continue
		}
		kept = append(kept, it)
	}
	// clear the tail so removed records are not retained by the backing array
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = core.ExpenseRecord{}
	}
	s.items = kept
	return nil
}

func (s *Store) GetBudget(_ context.Context, month core.Month) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.budgets[month]; ok {
		return v, nil
	}
	return s.defaultBudget, nil
}

func (s *Store) SetBudget(_ context.Context, month core.Month, amount int64) error {
	if err := core.ValidateBudget(amount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return core.Unavailable("set budget", errReadOnly)
	}
	s.budgets[month] = amount
	return nil
}
