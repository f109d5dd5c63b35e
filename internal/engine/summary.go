// Package engine turns ledger data into a month's financial state and the
// opportunity-cost figures derived from it. It holds no state between calls:
// every summary is re-derived from the store.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"assetguard/internal/core"
	"assetguard/internal/ledger"
)

// Store is the read side of the ledger the engine needs.
type Store interface {
	ledger.ExpenseReader
	GetBudget(ctx context.Context, month core.Month) (int64, error)
}

// Engine computes monthly summaries over a ledger store.
type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

// Summary is the financial state of one month. Month and Budget are the
// explicit pair the summary was computed for.
type Summary struct {
	Month       core.Month
	Budget      int64
	TotalSpent  int64
	Rollover    int64
	FinalBudget int64
	Remaining   int64
	// Progress is TotalSpent/FinalBudget clamped to [0,1], or 1 when FinalBudget <= 0.
	Progress float64
	Expenses []core.ExpenseRecord
}

// Overspent reports a negative remaining balance. It is a warning state, not an error.
func (s Summary) Overspent() bool {
	return s.Remaining < 0
}

// ComputeSummary aggregates month against its budget. With rollover enabled the
// previous month's unspent (or overspent) balance is carried into the final budget.
func (e *Engine) ComputeSummary(ctx context.Context, month core.Month, supportsRollover bool) (Summary, error) {
	expenses, spent, err := e.monthTotals(ctx, month)
	if err != nil {
		return Summary{}, err
	}
	budget, err := e.store.GetBudget(ctx, month)
	if err != nil {
		return Summary{}, fmt.Errorf("budget for %s: %w", month, err)
	}

	var rollover int64
	if supportsRollover {
		prev := month.Previous()
		_, prevSpent, err := e.monthTotals(ctx, prev)
		if err != nil {
			return Summary{}, err
		}
		prevBudget, err := e.store.GetBudget(ctx, prev)
		if err != nil {
			return Summary{}, fmt.Errorf("budget for %s: %w", prev, err)
		}
		rollover = prevBudget - prevSpent
	}

	final := budget + rollover
	s := Summary{
		Month:       month,
		Budget:      budget,
		TotalSpent:  spent,
		Rollover:    rollover,
		FinalBudget: final,
		Remaining:   final - spent,
		Progress:    Progress(spent, final),
		Expenses:    expenses,
	}
	slog.DebugContext(ctx, "Summary computed",
		"component", "engine",
		"month", month.String(),
		"spent", spent,
		"final_budget", final,
		"rollover", rollover)
	return s, nil
}

func (e *Engine) monthTotals(ctx context.Context, month core.Month) ([]core.ExpenseRecord, int64, error) {
	expenses, err := e.store.QueryExpenses(ctx, month)
	if err != nil {
		return nil, 0, fmt.Errorf("expenses for %s: %w", month, err)
	}
	return expenses, ledger.TotalSpent(expenses), nil
}

// Progress is spent/final clamped to [0,1]. A non-positive final budget counts as fully consumed.
func Progress(spent, final int64) float64 {
	if final <= 0 {
		return 1.0
	}
	p := float64(spent) / float64(final)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
