// Package amortization projects loan payoff and reconciles repayment
// schedules with staged edits. Every function here is pure: inputs are
// taken by value and nothing performs I/O.
package amortization

import (
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// interestPlaces bounds the precision carried between months so the
// decimal representation stays fixed-size over a full horizon.
const interestPlaces = 10

// Simulation is the result of one month-by-month amortization run
type Simulation struct {
	Months           int
	TotalInterest    decimal.Decimal
	RemainingBalance decimal.Decimal
	Outcome          domain.SimulationOutcome
}

// Simulate amortizes balance at monthlyRate with a fixed monthly payment.
//
// Each month accrues interest on the remaining balance, then applies the
// rest of the payment to principal. The run stops when the balance is
// cleared, when MaxProjectionMonths is reached, or right after a month in
// which the payment did not exceed the interest. In the last case the
// month is counted and its interest recorded, but the balance is left as
// it stood, so Months is not a payoff time.
func Simulate(balance, monthlyRate, payment decimal.Decimal) Simulation {
	totalInterest := decimal.Zero
	months := 0
	guardFired := false

	for balance.IsPositive() && months < domain.MaxProjectionMonths {
		interest := balance.Mul(monthlyRate).Round(interestPlaces)
		totalInterest = totalInterest.Add(interest)

		principal := decimal.Min(payment.Sub(interest), balance)
		balance = balance.Sub(principal)
		months++

		if payment.LessThanOrEqual(interest) {
			guardFired = true
			break
		}
	}

	sim := Simulation{
		Months:           months,
		TotalInterest:    totalInterest,
		RemainingBalance: balance,
	}
	switch {
	case !balance.IsPositive():
		sim.Outcome = domain.OutcomePaidOff
	case guardFired:
		sim.Outcome = domain.OutcomeNotAmortizing
	default:
		sim.Outcome = domain.OutcomeHorizonExceeded
	}
	return sim
}

// PayoffMonths returns Months for a paid-off run and the horizon otherwise,
// so comparisons never credit a stalled run with an early payoff.
func (s Simulation) PayoffMonths() int {
	if s.Outcome.ReachedPayoff() {
		return s.Months
	}
	return domain.MaxProjectionMonths
}
