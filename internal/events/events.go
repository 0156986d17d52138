// Package events publishes ledger change notifications to downstream consumers.
//
// Publishing is best-effort: the ledger database is the source of truth and a
// failed publish never fails the request that caused it.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Type names a ledger change. It doubles as the AMQP routing key.
type Type string

const (
	ExpenseCreated  Type = "expense.created"
	ExpenseUpdated  Type = "expense.updated"
	ExpenseDeleted  Type = "expense.deleted"
	PaymentRecorded Type = "payment.recorded"
)

// Event describes a change to a group's ledger.
type Event struct {
	Type       Type            `json:"type"`
	GroupID    string          `json:"group_id"`
	ActorID    string          `json:"actor_id"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	PaymentID  string          `json:"payment_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New creates an event stamped with the current time.
func New(t Type, groupID, actorID string) Event {
	return Event{
		Type:       t,
		GroupID:    groupID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers ledger events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
