// Package events publishes expense lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types, also used as routing keys.
const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

// ExpenseEvent announces a change to one expense. It carries identifiers
// only; consumers read the current state from the API.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent stamps an event with the current time.
func NewExpenseEvent(eventType string, userID, expenseID int64) ExpenseEvent {
	return ExpenseEvent{
		Type:      eventType,
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers expense events. Delivery is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event ExpenseEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ExpenseEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }
