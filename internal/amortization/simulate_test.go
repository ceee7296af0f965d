package amortization

import (
	"testing"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSimulate_ZeroRatePaysOffExactly(t *testing.T) {
	sim := Simulate(d("300"), decimal.Zero, d("100"))

	assert.Equal(t, 3, sim.Months)
	assert.True(t, sim.TotalInterest.IsZero())
	assert.True(t, sim.RemainingBalance.IsZero())
	assert.Equal(t, domain.OutcomePaidOff, sim.Outcome)
}

func TestSimulate_FinalMonthPaysOnlyRemainingBalance(t *testing.T) {
	sim := Simulate(d("250"), decimal.Zero, d("100"))

	assert.Equal(t, 3, sim.Months)
	assert.True(t, sim.RemainingBalance.IsZero(), "balance must not go below zero, got %s", sim.RemainingBalance)
}

func TestSimulate_StandardLoan(t *testing.T) {
	// 10,000 at 6% APR paying 225/month takes a little over 50 months
	sim := Simulate(d("10000"), d("0.005"), d("225"))

	assert.Equal(t, 51, sim.Months)
	assert.Equal(t, domain.OutcomePaidOff, sim.Outcome)
	assert.True(t, sim.TotalInterest.GreaterThan(d("1300")))
	assert.True(t, sim.TotalInterest.LessThan(d("1400")))
}

func TestSimulate_NegativeAmortizationGuard(t *testing.T) {
	// 100,000 at 24% APR accrues 2,000 in the first month against a 100 payment
	sim := Simulate(d("100000"), d("0.02"), d("100"))

	assert.Equal(t, 1, sim.Months, "guard must fire on the first month, well before the cap")
	assert.Equal(t, domain.OutcomeNotAmortizing, sim.Outcome)
	assert.True(t, sim.TotalInterest.Equal(d("2000")))
	// The month is recorded but the balance is not reconciled
	assert.True(t, sim.RemainingBalance.Equal(d("101900")), "got %s", sim.RemainingBalance)
	assert.Equal(t, domain.MaxProjectionMonths, sim.PayoffMonths())
}

func TestSimulate_PaymentEqualToInterestTripsGuard(t *testing.T) {
	sim := Simulate(d("1000"), d("0.01"), d("10"))

	assert.Equal(t, 1, sim.Months)
	assert.Equal(t, domain.OutcomeNotAmortizing, sim.Outcome)
	assert.True(t, sim.RemainingBalance.Equal(d("1000")))
}

func TestSimulate_HorizonExceeded(t *testing.T) {
	// Amortizes, but would need roughly 480 months
	sim := Simulate(d("100000"), d("0.005"), d("550"))

	assert.Equal(t, domain.MaxProjectionMonths, sim.Months)
	assert.Equal(t, domain.OutcomeHorizonExceeded, sim.Outcome)
	assert.True(t, sim.RemainingBalance.IsPositive())
}

func TestSimulate_ZeroBalance(t *testing.T) {
	sim := Simulate(decimal.Zero, d("0.005"), d("100"))

	assert.Equal(t, 0, sim.Months)
	assert.Equal(t, domain.OutcomePaidOff, sim.Outcome)
}

func TestSimulate_Deterministic(t *testing.T) {
	a := Simulate(d("15432.17"), d("0.0075"), d("311.40"))
	b := Simulate(d("15432.17"), d("0.0075"), d("311.40"))

	assert.Equal(t, a.Months, b.Months)
	assert.True(t, a.TotalInterest.Equal(b.TotalInterest))
	assert.True(t, a.RemainingBalance.Equal(b.RemainingBalance))
}
