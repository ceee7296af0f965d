package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Override is a staged, unconfirmed edit of one installment
type Override struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date,omitempty"`
}

// OverrideSnapshot is an immutable view of staged overrides keyed by
// installment number (1-based)
type OverrideSnapshot map[int]Override

// Lookup returns the override staged for an installment
func (s OverrideSnapshot) Lookup(number int) (Override, bool) {
	if s == nil {
		return Override{}, false
	}
	o, ok := s[number]
	return o, ok
}

// OverrideSession identifies the store a borrower edits for one loan
type OverrideSession struct {
	CustomerID string
	LoanID     string
}

// OverrideSessionRepository keeps override snapshots for the lifetime of a
// borrower session. Snapshots are never written to the servicing database.
type OverrideSessionRepository interface {
	Load(session OverrideSession) (OverrideSnapshot, error)
	Save(session OverrideSession, snapshot OverrideSnapshot) error
	Delete(session OverrideSession) error
}
