package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
)

// EventType names the store mutation an ExpenseEvent describes.
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
	EventCleared EventType = "cleared"
)

// ExpenseEvent is published after every successful store mutation.
// Created events carry the full record; deleted events carry only the id.
type ExpenseEvent struct {
	MessageID   string    `json:"message_id"`
	Type        EventType `json:"type"`
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Date        string    `json:"date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func newEvent(t EventType) *ExpenseEvent {
	return &ExpenseEvent{
		MessageID: uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreatedEvent describes a freshly stored expense.
func NewCreatedEvent(e core.Expense) *ExpenseEvent {
	ev := newEvent(EventCreated)
	ev.ID = e.ID
	ev.Name = e.Name
	ev.AmountCents = e.Amount.Cents
	ev.Date = e.Date
	return ev
}

func NewDeletedEvent(id int64) *ExpenseEvent {
	ev := newEvent(EventDeleted)
	ev.ID = id
	return ev
}

func NewClearedEvent() *ExpenseEvent {
	return newEvent(EventCleared)
}

// Expense rebuilds the record carried by a created event.
func (m *ExpenseEvent) Expense() core.Expense {
	return core.Expense{
		ID:     m.ID,
		Name:   m.Name,
		Amount: core.Money{Cents: m.AmountCents},
		Date:   m.Date,
	}
}

// Validate checks the fields each event type requires.
func (m *ExpenseEvent) Validate() error {
	switch m.Type {
	case EventCreated, EventDeleted:
		if m.ID <= 0 {
			return fmt.Errorf("%s event without expense id", m.Type)
		}
	case EventCleared:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and validates an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
