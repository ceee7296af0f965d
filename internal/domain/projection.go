package domain

import "github.com/shopspring/decimal"

// MaxProjectionMonths caps every amortization run at 30 years
const MaxProjectionMonths = 360

// SimulationOutcome tells how an amortization run ended
type SimulationOutcome string

const (
	// OutcomePaidOff means the balance reached zero
	OutcomePaidOff SimulationOutcome = "paid_off"
	// OutcomeHorizonExceeded means the run hit MaxProjectionMonths with a balance left
	OutcomeHorizonExceeded SimulationOutcome = "horizon_exceeded"
	// OutcomeNotAmortizing means a payment did not cover that month's interest
	OutcomeNotAmortizing SimulationOutcome = "not_amortizing"
)

// ReachedPayoff reports whether the run ended with the balance cleared
func (o SimulationOutcome) ReachedPayoff() bool {
	return o == OutcomePaidOff
}

// Projection compares a hypothetical payment plan against the minimum-payment
// baseline. MonthsToPayoff and BaselineMonths equal MaxProjectionMonths when
// the matching run did not pay off; SimulatedMonths keeps the raw count.
type Projection struct {
	TotalPayment     decimal.Decimal   `json:"totalPayment"`
	ExtraPayment     decimal.Decimal   `json:"extraPayment"`
	MonthsToPayoff   int               `json:"monthsToPayoff"`
	SimulatedMonths  int               `json:"simulatedMonths"`
	TotalInterest    decimal.Decimal   `json:"totalInterest"`
	Outcome          SimulationOutcome `json:"outcome"`
	BaselineMonths   int               `json:"baselineMonths"`
	BaselineInterest decimal.Decimal   `json:"baselineInterest"`
	BaselineOutcome  SimulationOutcome `json:"baselineOutcome"`
	MonthsSaved      int               `json:"monthsSaved"`
	InterestSaved    decimal.Decimal   `json:"interestSaved"`
}

// HorizonExceeded reports whether the hypothetical plan failed to pay off
// within the projection horizon. Callers should render "beyond horizon"
// instead of MonthsToPayoff in that case.
func (p Projection) HorizonExceeded() bool {
	return !p.Outcome.ReachedPayoff()
}
