package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes scheduled installments from extra principal
type PaymentType string

const (
	PaymentTypeScheduled PaymentType = "scheduled"
	PaymentTypeExtra     PaymentType = "extra"
)

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is an entry of a customer's payment history
type Payment struct {
	ID                uuid.UUID       `json:"id"`
	CustomerID        string          `json:"customerId"`
	LoanID            string          `json:"loanId"`
	Amount            decimal.Decimal `json:"amount"`
	Type              PaymentType     `json:"type"`
	Status            PaymentStatus   `json:"status"`
	InstallmentNumber *int            `json:"installmentNumber,omitempty"`
	PaidAt            time.Time       `json:"date"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// PaymentUrgency grades how close a due date is
type PaymentUrgency string

const (
	UrgencyUrgent PaymentUrgency = "urgent"
	UrgencySoon   PaymentUrgency = "soon"
	UrgencyNormal PaymentUrgency = "normal"
)

// UrgencyFor returns the urgency for a number of days until due
func UrgencyFor(daysUntilDue int) PaymentUrgency {
	switch {
	case daysUntilDue <= 3:
		return UrgencyUrgent
	case daysUntilDue <= 7:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// UpcomingPayment is the next installment a customer owes on one loan
type UpcomingPayment struct {
	LoanID            string          `json:"loanId"`
	LoanName          string          `json:"loanName"`
	InstallmentNumber int             `json:"installmentNumber"`
	Amount            decimal.Decimal `json:"amount"`
	DueDate           time.Time       `json:"dueDate"`
	DaysUntilDue      int             `json:"daysUntilDue"`
	Urgency           PaymentUrgency  `json:"urgency"`
	IsModified        bool            `json:"isModified"`
}

// PaymentRepository defines the interface for payment persistence operations
type PaymentRepository interface {
	Create(payment *Payment) (*Payment, error)
	GetByID(customerID string, id uuid.UUID) (*Payment, error)
	GetAllByCustomer(customerID string) ([]*Payment, error)
}
