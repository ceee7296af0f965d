package amortization

import (
	"errors"
	"testing"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoan(balance, rate, minPayment string) domain.Loan {
	return domain.Loan{
		ID:             "LN-1",
		OriginalAmount: d(balance),
		CurrentBalance: d(balance),
		InterestRate:   d(rate),
		MinPayment:     d(minPayment),
		MonthlyPayment: d(minPayment),
	}
}

func TestCompare_NoExtraPaymentSavesNothing(t *testing.T) {
	loans := []domain.Loan{
		testLoan("10000", "6", "225"),
		testLoan("2500", "0", "100"),
		testLoan("100000", "24", "100"),
		testLoan("100000", "6", "550"),
		testLoan("0", "12", "50"),
	}

	for _, loan := range loans {
		p, err := Compare(loan, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, 0, p.MonthsSaved)
		assert.True(t, p.InterestSaved.IsZero(), "interest saved %s", p.InterestSaved)
		assert.Equal(t, p.BaselineMonths, p.MonthsToPayoff)
	}
}

func TestCompare_ExtraPaymentShortensPayoff(t *testing.T) {
	loan := testLoan("10000", "6", "225")

	base, err := Compare(loan, decimal.Zero)
	require.NoError(t, err)
	extra, err := Compare(loan, d("100"))
	require.NoError(t, err)

	assert.Equal(t, 51, base.MonthsToPayoff)
	assert.Equal(t, 34, extra.MonthsToPayoff)
	assert.Less(t, extra.MonthsToPayoff, base.MonthsToPayoff)
	assert.Equal(t, 17, extra.MonthsSaved)
	assert.True(t, extra.InterestSaved.IsPositive())
	assert.True(t, extra.TotalPayment.Equal(d("325")))
	assert.False(t, extra.HorizonExceeded())
}

func TestCompare_MorePaymentNeverDelaysPayoff(t *testing.T) {
	loans := []domain.Loan{
		testLoan("10000", "6", "225"),
		testLoan("100000", "24", "100"),
		testLoan("100000", "6", "550"),
		testLoan("4200.50", "17.9", "95"),
	}
	extras := []string{"0", "1", "10", "50", "100", "500", "2500", "10000"}

	for _, loan := range loans {
		prevMonths := -1
		for _, e := range extras {
			p, err := Compare(loan, d(e))
			require.NoError(t, err)
			if prevMonths >= 0 {
				assert.LessOrEqual(t, p.MonthsToPayoff, prevMonths, "loan %s extra %s", loan.CurrentBalance, e)
			}
			assert.False(t, p.InterestSaved.IsNegative())
			prevMonths = p.MonthsToPayoff
		}
	}
}

func TestCompare_GuardedBaselineReportsHorizon(t *testing.T) {
	p, err := Compare(testLoan("100000", "24", "100"), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNotAmortizing, p.Outcome)
	assert.True(t, p.HorizonExceeded())
	assert.Equal(t, 1, p.SimulatedMonths)
	assert.Equal(t, domain.MaxProjectionMonths, p.MonthsToPayoff)
}

func TestCompare_InvalidTerms(t *testing.T) {
	tests := []struct {
		name string
		loan domain.Loan
	}{
		{"zero minimum payment", testLoan("1000", "5", "0")},
		{"negative minimum payment", testLoan("1000", "5", "-10")},
		{"negative rate", testLoan("1000", "-1", "50")},
		{"negative balance", testLoan("-1", "5", "50")},
		{"balance above original amount", domain.Loan{
			OriginalAmount: d("1000"),
			CurrentBalance: d("1000.01"),
			InterestRate:   d("5"),
			MinPayment:     d("50"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compare(tt.loan, decimal.Zero)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidLoanTerms))
		})
	}
}

func TestCompare_BalanceWithoutOriginalAmount(t *testing.T) {
	loan := testLoan("1000", "5", "50")
	loan.OriginalAmount = decimal.Zero

	_, err := Compare(loan, decimal.Zero)
	assert.NoError(t, err)
}

func TestCompare_NegativeExtraPayment(t *testing.T) {
	_, err := Compare(testLoan("1000", "5", "50"), d("-5"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidExtraPayment))
}
