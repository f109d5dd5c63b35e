package amqp

import (
	"encoding/json"
	"time"

	"assetguard/internal/core"

	"github.com/google/uuid"
)

// Event types double as routing keys on the topic exchange.
const (
	EventExpenseCreated  = "expense.created"
	EventExpensesDeleted = "expenses.deleted"
	EventBudgetUpdated   = "budget.updated"
)

// LedgerEvent announces a completed ledger mutation. Fields not relevant to
// the event type are omitted.
type LedgerEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Month     string    `json:"month,omitempty"`
	IDs       []int64   `json:"ids,omitempty"`
	Date      string    `json:"date,omitempty"`
	Item      string    `json:"item,omitempty"`
	Amount    *int64    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(kind string) *LedgerEvent {
	return &LedgerEvent{
		EventID:   uuid.NewString(),
		Type:      kind,
		Timestamp: time.Now().UTC(),
	}
}

func NewExpenseCreated(id int64, date core.Date, item string, amount int64) *LedgerEvent {
	e := newEvent(EventExpenseCreated)
	e.IDs = []int64{id}
	e.Date = date.String()
	e.Month = date.Month().String()
	e.Item = item
	e.Amount = &amount
	return e
}

func NewExpensesDeleted(ids []int64) *LedgerEvent {
	e := newEvent(EventExpensesDeleted)
	e.IDs = append([]int64(nil), ids...)
	return e
}

func NewBudgetUpdated(month core.Month, amount int64) *LedgerEvent {
	e := newEvent(EventBudgetUpdated)
	e.Month = month.String()
	e.Amount = &amount
	return e
}

// ToJSON converts the event to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
