package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind groups notifications for display
type NotificationKind string

const (
	NotificationKindPayment  NotificationKind = "payment"
	NotificationKindDocument NotificationKind = "document"
	NotificationKindLoan     NotificationKind = "loan"
)

// Notification is a message shown in the borrower's inbox
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	CustomerID string           `json:"customerId"`
	Kind       NotificationKind `json:"kind"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
	// DedupeKey makes creation idempotent per customer when set
	DedupeKey *string `json:"-"`
}

// NotificationRepository defines the interface for notification persistence operations
type NotificationRepository interface {
	// Create returns ErrDuplicateNotification when DedupeKey was already used
	Create(n *Notification) (*Notification, error)
	GetAllByCustomer(customerID string) ([]*Notification, error)
	MarkRead(customerID string, id uuid.UUID) (*Notification, error)
	MarkAllRead(customerID string) (int64, error)
	CountUnread(customerID string) (int64, error)
}
