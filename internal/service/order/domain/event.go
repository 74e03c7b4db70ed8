// internal/service/order/domain/event.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies ledger entries.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status_changed"
	EventUpdated       EventType = "updated"
	EventDeleted       EventType = "deleted"
)

// OrderEvent is one append-only ledger entry. Seq is assigned by storage and
// orders the timeline; entries are never mutated or deleted, the ledger
// outlives the order row itself.
type OrderEvent struct {
	Seq         int64
	EventID     string
	OrderID     string
	Type        EventType
	Description string
	OldValue    string
	NewValue    string
	ActorID     int64
	CreatedAt   time.Time
}

func newEvent(orderID string, typ EventType, actorID int64) OrderEvent {
	return OrderEvent{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Type:      typ,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewCreatedEvent records a successful order creation.
func NewCreatedEvent(o *Order, actorID int64) OrderEvent {
	e := newEvent(o.ID, EventCreated, actorID)
	e.Description = "order created"
	e.NewValue = string(o.Status)
	return e
}

// NewStatusChangedEvent records a committed status transition.
func NewStatusChangedEvent(orderID string, from, to Status, actorID int64) OrderEvent {
	e := newEvent(orderID, EventStatusChanged, actorID)
	e.Description = "order status changed"
	e.OldValue = string(from)
	e.NewValue = string(to)
	return e
}

// NewUpdatedEvent records a committed mutation that left the status as-is.
func NewUpdatedEvent(orderID string, actorID int64) OrderEvent {
	e := newEvent(orderID, EventUpdated, actorID)
	e.Description = "order updated"
	return e
}

// NewDeletedEvent records an order removal.
func NewDeletedEvent(orderID string, lastStatus Status, actorID int64) OrderEvent {
	e := newEvent(orderID, EventDeleted, actorID)
	e.Description = "order deleted"
	e.OldValue = string(lastStatus)
	return e
}
