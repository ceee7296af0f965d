package domain

import (
	"time"
)

// Customer is a borrower with portal access. ID is the identity provider's
// username for the borrower.
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Phone     *string   `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerRepository defines the interface for customer persistence operations
type CustomerRepository interface {
	GetByID(id string) (*Customer, error)
	// ListActiveIDs returns the IDs of customers with portal access
	ListActiveIDs() ([]string, error)
	UpdateContact(id string, name string, phone *string) (*Customer, error)
}
