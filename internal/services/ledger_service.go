package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"assetguard/internal/amqp"
	"assetguard/internal/core"
	"assetguard/internal/ledger"
)

// Publisher announces ledger mutations. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService validates user input, mutates the store and publishes events.
// Publishing is best effort: a failed publish is logged and the mutation stands.
type LedgerService struct {
	store     ledger.Store
	publisher Publisher
}

// NewLedgerService wires a store and an optional publisher (nil disables events).
func NewLedgerService(store ledger.Store, publisher Publisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// AddExpense rejects blank items and non-positive amounts before touching the store.
func (s *LedgerService) AddExpense(ctx context.Context, date core.Date, item string, amount int64) (int64, error) {
	if err := core.ValidateItem(item); err != nil {
		return 0, err
	}
	if _, err := core.NewExpenseRecord(date, item, amount); err != nil {
		return 0, err
	}

	id, err := s.store.AppendExpense(ctx, date, item, amount)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense added",
		"component", "ledger_service",
		"id", id,
		"month", date.Month().String(),
		"amount", amount)

	s.publish(ctx, amqp.NewExpenseCreated(id, date, item, amount))
	return id, nil
}

// DeleteExpenses removes ids as one batch. An empty selection is rejected.
func (s *LedgerService) DeleteExpenses(ctx context.Context, ids []int64) error {
	ids = ledger.UniqueIDs(ids)
	if len(ids) == 0 {
		return core.Invalid("ids", "select at least one expense to delete")
	}
	if err := s.store.DeleteExpenses(ctx, ids); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	slog.InfoContext(ctx, "Expenses deleted", "component", "ledger_service", "count", len(ids))

	s.publish(ctx, amqp.NewExpensesDeleted(ids))
	return nil
}

// SetBudget changes the budget of month only.
func (s *LedgerService) SetBudget(ctx context.Context, month core.Month, amount int64) error {
	if month.IsZero() {
		return core.Invalid("month", "month is required")
	}
	if err := core.ValidateBudget(amount); err != nil {
		return err
	}
	if err := s.store.SetBudget(ctx, month, amount); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget updated",
		"component", "ledger_service",
		"month", month.String(),
		"amount", amount)

	s.publish(ctx, amqp.NewBudgetUpdated(month, amount))
	return nil
}

func (s *LedgerService) GetBudget(ctx context.Context, month core.Month) (int64, error) {
	return s.store.GetBudget(ctx, month)
}

func (s *LedgerService) ListExpenses(ctx context.Context, month core.Month) ([]core.ExpenseRecord, error) {
	return s.store.QueryExpenses(ctx, month)
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping ledger event", "type", event.Type)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// the mutation is already durable
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"event_id", event.EventID,
			"error", err)
	}
}

// Close closes the publisher and, when it owns one, the store.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
