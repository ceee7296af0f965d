package amortization

import (
	"fmt"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Compare projects the loan with extraPayment added to the minimum payment
// and reports the difference against paying only the minimum.
func Compare(loan domain.Loan, extraPayment decimal.Decimal) (domain.Projection, error) {
	if err := loan.ValidateTerms(); err != nil {
		return domain.Projection{}, err
	}
	if extraPayment.IsNegative() {
		return domain.Projection{}, fmt.Errorf("%w: got %s", domain.ErrInvalidExtraPayment, extraPayment)
	}

	rate := loan.MonthlyRate()
	baseline := Simulate(loan.CurrentBalance, rate, loan.MinPayment)

	hypothetical := baseline
	if extraPayment.IsPositive() {
		hypothetical = Simulate(loan.CurrentBalance, rate, loan.MinPayment.Add(extraPayment))
	}

	interestSaved := baseline.TotalInterest.Sub(hypothetical.TotalInterest)
	if interestSaved.IsNegative() {
		interestSaved = decimal.Zero
	}

	return domain.Projection{
		TotalPayment:     loan.MinPayment.Add(extraPayment),
		ExtraPayment:     extraPayment,
		MonthsToPayoff:   hypothetical.PayoffMonths(),
		SimulatedMonths:  hypothetical.Months,
		TotalInterest:    hypothetical.TotalInterest.Round(2),
		Outcome:          hypothetical.Outcome,
		BaselineMonths:   baseline.PayoffMonths(),
		BaselineInterest: baseline.TotalInterest.Round(2),
		BaselineOutcome:  baseline.Outcome,
		MonthsSaved:      baseline.PayoffMonths() - hypothetical.PayoffMonths(),
		InterestSaved:    interestSaved.Round(2),
	}, nil
}
