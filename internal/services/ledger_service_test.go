package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetguard/internal/amqp"
	"assetguard/internal/core"
	"assetguard/internal/ledger/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func TestLedgerService_AddExpense(t *testing.T) {
	store := memory.New(50000)
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, core.NewDate(2025, time.January, 3), "coffee", 450)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventExpenseCreated, pub.events[0].Type)

	got, err := svc.ListExpenses(ctx, core.NewMonth(2025, time.January))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLedgerService_AddExpenseRejectsInvalidInput(t *testing.T) {
	store := memory.New(50000)
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	cases := []struct {
		name   string
		date   core.Date
		item   string
		amount int64
	}{
		{"blank item", core.NewDate(2025, 1, 1), "   ", 100},
		{"zero amount", core.NewDate(2025, 1, 1), "x", 0},
		{"negative amount", core.NewDate(2025, 1, 1), "x", -100},
		{"zero date", core.Date{}, "x", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddExpense(ctx, tc.date, tc.item, tc.amount)
			assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
		})
	}
	assert.Empty(t, pub.events)
	got, _ := store.QueryExpenses(ctx, core.NewMonth(2025, 1))
	assert.Empty(t, got)
}

func TestLedgerService_PublishFailureDoesNotFailMutation(t *testing.T) {
	svc := NewLedgerService(memory.New(50000), &recordingPublisher{err: errors.New("broker down")})
	_, err := svc.AddExpense(context.Background(), core.NewDate(2025, 2, 2), "tea", 300)
	assert.NoError(t, err)
}

func TestLedgerService_WithoutPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(50000), nil)
	_, err := svc.AddExpense(context.Background(), core.NewDate(2025, 2, 2), "tea", 300)
	assert.NoError(t, err)
	assert.NoError(t, svc.Close())
}

func TestLedgerService_DeleteExpenses(t *testing.T) {
	store := memory.New(50000)
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	a, _ := svc.AddExpense(ctx, core.NewDate(2025, 4, 1), "a", 1)
	b, _ := svc.AddExpense(ctx, core.NewDate(2025, 4, 2), "b", 2)

	require.NoError(t, svc.DeleteExpenses(ctx, []int64{a, a}))
	got, _ := svc.ListExpenses(ctx, core.NewMonth(2025, 4))
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0].ID)

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, amqp.EventExpensesDeleted, last.Type)
	assert.Equal(t, []int64{a}, last.IDs)

	err := svc.DeleteExpenses(ctx, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestLedgerService_SetBudgetAffectsOnlyThatMonth(t *testing.T) {
	store := memory.New(50000)
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetBudget(ctx, core.NewMonth(2025, 5), 80000))
	v, _ := svc.GetBudget(ctx, core.NewMonth(2025, 5))
	assert.Equal(t, int64(80000), v)
	v, _ = svc.GetBudget(ctx, core.NewMonth(2025, 6))
	assert.Equal(t, int64(50000), v)

	assert.True(t, errors.Is(svc.SetBudget(ctx, core.NewMonth(2025, 5), -1), core.ErrInvalidInput))
	assert.True(t, errors.Is(svc.SetBudget(ctx, core.Month{}, 1), core.ErrInvalidInput))
}

func TestLedgerService_StorageFailurePropagates(t *testing.T) {
	svc := NewLedgerService(memory.NewReadOnly(50000), nil)
	_, err := svc.AddExpense(context.Background(), core.NewDate(2025, 1, 1), "x", 1)
	assert.True(t, errors.Is(err, core.ErrStorageUnavailable))
}
