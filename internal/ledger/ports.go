// Package ledger defines the storage ports for expense records and monthly budgets.
//
// Backends live in subpackages (google, memory) and in internal/storage (SQLite).
// All of them honour the same contract: append validates amount > 0, queries
// return an empty slice for months without data, batch deletes are all-or-nothing
// and ignore unknown ids, and GetBudget falls back to a default without persisting it.
package ledger

import (
	"context"

	"assetguard/internal/core"
)

// Ports for outbound adapters.
type (
	ExpenseAppender interface {
		// AppendExpense stores a new record and returns its store-assigned id.
		AppendExpense(ctx context.Context, date core.Date, item string, amount int64) (int64, error)
	}

	ExpenseReader interface {
		// QueryExpenses returns the month's records in insertion order.
		QueryExpenses(ctx context.Context, month core.Month) ([]core.ExpenseRecord, error)
	}

	ExpenseDeleter interface {
		DeleteExpenses(ctx context.Context, ids []int64) error
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, month core.Month) (int64, error)
		SetBudget(ctx context.Context, month core.Month, amount int64) error
	}

	// Store is the full ledger surface the engine and services depend on.
	Store interface {
		ExpenseAppender
		ExpenseReader
		ExpenseDeleter
		BudgetStore
	}
)

// UniqueIDs drops duplicates while preserving first-seen order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// TotalSpent sums the amounts of records.
func TotalSpent(records []core.ExpenseRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.Amount
	}
	return total
}
