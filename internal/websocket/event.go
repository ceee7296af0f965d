package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeRead     EventType = "read"
	EventTypeSigned   EventType = "signed"
	EventTypeModified EventType = "modified"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeNotification EntityType = "notification"
	EntityTypePayment      EntityType = "payment"
	EntityTypeDocument     EntityType = "document"
	EntityTypeSchedule     EntityType = "schedule"
	EntityTypeLoan         EntityType = "loan"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "payment.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "payment"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NotificationCreated creates a notification.created event
func NotificationCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeNotification, payload)
}

// NotificationsRead creates a notification.read event
func NotificationsRead(payload interface{}) Event {
	return NewEvent(EventTypeRead, EntityTypeNotification, payload)
}

// PaymentCreated creates a payment.created event
func PaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePayment, payload)
}

// LoanUpdated creates a loan.updated event
func LoanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLoan, payload)
}

// DocumentUpdated creates a document.updated event
func DocumentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeDocument, payload)
}

// DocumentSigned creates a document.signed event
func DocumentSigned(payload interface{}) Event {
	return NewEvent(EventTypeSigned, EntityTypeDocument, payload)
}

// DocumentDeleted creates a document.deleted event
func DocumentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeDocument, payload)
}

// ScheduleModified creates a schedule.modified event. It keeps other open
// tabs of the same borrower in sync with staged overrides.
func ScheduleModified(payload interface{}) Event {
	return NewEvent(EventTypeModified, EntityTypeSchedule, payload)
}
