package amortization

import (
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	minOverrideFactor = decimal.NewFromFloat(0.5)
	maxOverrideFactor = decimal.NewFromInt(3)
)

// OverrideStore holds the staged edits of one borrower on one loan.
// It is safe for concurrent use.
type OverrideStore struct {
	mu         sync.RWMutex
	minPayment decimal.Decimal
	entries    map[int]domain.Override
}

// NewOverrideStore creates an empty store bounded by minPayment
func NewOverrideStore(minPayment decimal.Decimal) *OverrideStore {
	return &OverrideStore{
		minPayment: minPayment,
		entries:    make(map[int]domain.Override),
	}
}

// RestoreOverrideStore rebuilds a store from a persisted snapshot
func RestoreOverrideStore(minPayment decimal.Decimal, snapshot domain.OverrideSnapshot) *OverrideStore {
	s := NewOverrideStore(minPayment)
	for number, o := range snapshot {
		s.entries[number] = o
	}
	return s
}

// Bounds returns the inclusive range a staged amount must fall in
func (s *OverrideStore) Bounds() (lower, upper decimal.Decimal) {
	return s.minPayment.Mul(minOverrideFactor), s.minPayment.Mul(maxOverrideFactor)
}

// Stage records an edit for installment number. Out-of-range amounts are
// rejected with ErrOverrideRejected and leave the store untouched.
func (s *OverrideStore) Stage(number int, amount decimal.Decimal, date *time.Time) error {
	if number < 1 {
		return fmt.Errorf("%w: installment number must be positive", domain.ErrInvalidInput)
	}
	lower, upper := s.Bounds()
	if amount.LessThan(lower) || amount.GreaterThan(upper) {
		return fmt.Errorf("%w: %s not within [%s, %s]", domain.ErrOverrideRejected, amount.StringFixed(2), lower.StringFixed(2), upper.StringFixed(2))
	}

	o := domain.Override{Amount: amount}
	if date != nil {
		d := *date
		o.Date = &d
	}

	s.mu.Lock()
	s.entries[number] = o
	s.mu.Unlock()
	return nil
}

// Clear removes the edit for installment number, if any
func (s *OverrideStore) Clear(number int) {
	s.mu.Lock()
	delete(s.entries, number)
	s.mu.Unlock()
}

// Reset drops every staged edit
func (s *OverrideStore) Reset() {
	s.mu.Lock()
	s.entries = make(map[int]domain.Override)
	s.mu.Unlock()
}

// Len returns the number of staged edits
func (s *OverrideStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the staged edits that later mutations do not affect
func (s *OverrideStore) Snapshot() domain.OverrideSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(domain.OverrideSnapshot, len(s.entries))
	for number, o := range s.entries {
		if o.Date != nil {
			d := *o.Date
			o.Date = &d
		}
		snap[number] = o
	}
	return snap
}
