package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLoan_SnakeCaseRecord(t *testing.T) {
	raw := `{
		"id": "LN-1001",
		"loan_name": {"text": "Auto Loan", "score": 0.97},
		"amount": 15000,
		"current_balance": "12000.50",
		"interest_rate": 6.5,
		"avg_monthly_payment": 293.5,
		"status": "Active",
		"reasons": [{"text": "Vehicle purchase", "score": 0.8}, "Refinance"],
		"repayment_schedule": [
			{"date": "2026-01-15", "amount": 293.5, "principal": 210, "interest": 83.5, "balance": 12210, "status": "paid"},
			{"date": "2026-02-15", "principal": 211, "interest": 82.5, "balance": 11999, "status": "pending"}
		]
	}`

	loan, err := NormalizeLoan("cust-1", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "LN-1001", loan.ID)
	assert.Equal(t, "cust-1", loan.CustomerID)
	assert.Equal(t, "Auto Loan", loan.Name)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.True(t, loan.OriginalAmount.Equal(decimal.NewFromInt(15000)))
	assert.True(t, loan.CurrentBalance.Equal(decimal.RequireFromString("12000.50")))
	assert.True(t, loan.InterestRate.Equal(decimal.RequireFromString("6.5")))
	assert.True(t, loan.MonthlyPayment.Equal(decimal.RequireFromString("293.5")))
	assert.True(t, loan.MinPayment.Equal(loan.MonthlyPayment), "min payment falls back to monthly payment")
	assert.Equal(t, []string{"Vehicle purchase", "Refinance"}, loan.Reasons)

	require.Len(t, loan.Schedule, 2)
	assert.True(t, loan.Schedule[0].Paid)
	assert.False(t, loan.Schedule[1].Paid)
	assert.True(t, loan.Schedule[1].Amount.Equal(loan.MonthlyPayment), "missing installment amount falls back to monthly payment")
	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), loan.Schedule[1].Date)
	assert.Equal(t, 2, loan.TotalPayments)
	assert.Equal(t, 1, loan.PaidPayments)
}

func TestNormalizeLoan_CamelCaseRecord(t *testing.T) {
	raw := `{
		"loanId": 42,
		"name": "Home Improvement",
		"originalAmount": "8000",
		"currentBalance": 5000,
		"interestRate": "9.9%",
		"monthlyPayment": 250,
		"minPayment": 200,
		"totalPayments": 36,
		"paidPayments": 12,
		"startDate": "2025-03-01",
		"nextPaymentDate": "2026-03-01T00:00:00Z",
		"nextPaymentAmount": 250
	}`

	loan, err := NormalizeLoan("cust-2", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "42", loan.ID)
	assert.Equal(t, "Home Improvement", loan.Name)
	assert.True(t, loan.InterestRate.Equal(decimal.RequireFromString("9.9")))
	assert.True(t, loan.MinPayment.Equal(decimal.NewFromInt(200)))
	assert.True(t, loan.MonthlyPayment.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 36, loan.TotalPayments)
	assert.Equal(t, 12, loan.PaidPayments)
	require.NotNil(t, loan.StartDate)
	assert.Equal(t, 2025, loan.StartDate.Year())
	require.NotNil(t, loan.NextPaymentDate)
	assert.False(t, loan.HasSchedule())
}

func TestNormalizeLoan_AliasPrecedence(t *testing.T) {
	raw := `{"amount": 1000, "originalAmount": 2000, "loan_name": null, "name": "Fallback Name", "interest_rate": 5, "interestRate": 7, "avg_monthly_payment": 100}`

	loan, err := NormalizeLoan("c", []byte(raw))
	require.NoError(t, err)

	assert.True(t, loan.OriginalAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Fallback Name", loan.Name)
	assert.True(t, loan.InterestRate.Equal(decimal.NewFromInt(5)))
}

func TestNormalizeLoan_Defaults(t *testing.T) {
	loan, err := NormalizeLoan("c", []byte(`{"amount": 500, "avg_monthly_payment": 50}`))
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultLoanName, loan.Name)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.True(t, loan.CurrentBalance.Equal(decimal.NewFromInt(500)), "balance falls back to amount")
	assert.True(t, loan.InterestRate.IsZero())
	assert.Zero(t, loan.TotalPayments)
}

func TestNormalizeLoan_ExplicitZeroBalanceIsKept(t *testing.T) {
	loan, err := NormalizeLoan("c", []byte(`{"amount": 500, "current_balance": 0, "avg_monthly_payment": 50}`))
	require.NoError(t, err)

	assert.True(t, loan.CurrentBalance.IsZero())
}

func TestNormalizeLoan_BlankStringFallsThrough(t *testing.T) {
	raw := `{"loan_name": "  ", "name": "Auto Loan", "amount": 500, "current_balance": "", "currentBalance": 300}`

	loan, err := NormalizeLoan("c", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Auto Loan", loan.Name)
	assert.True(t, loan.CurrentBalance.Equal(decimal.NewFromInt(300)))
}

func TestNormalizeLoan_PaidBooleanFlag(t *testing.T) {
	raw := `{"avg_monthly_payment": 10, "schedule": [{"dueDate": "2026-01-01", "payment": 10, "paid": true}]}`

	loan, err := NormalizeLoan("c", []byte(raw))
	require.NoError(t, err)
	require.Len(t, loan.Schedule, 1)
	assert.True(t, loan.Schedule[0].Paid)
}

func TestNormalizeLoan_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"amount":`},
		{"non numeric amount", `{"amount": "lots"}`},
		{"bad date", `{"startDate": "yesterday"}`},
		{"schedule not a list", `{"repayment_schedule": {"date": "2026-01-01"}}`},
		{"installment without date", `{"repayment_schedule": [{"amount": 10}]}`},
		{"fractional count", `{"totalPayments": 12.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeLoan("c", []byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestUnwrapScored(t *testing.T) {
	in := map[string]any{
		"plain":  "x",
		"scored": map[string]any{"text": "y", "score": 0.5},
		"nested": map[string]any{
			"list": []any{map[string]any{"text": "z", "score": 1}, "w"},
		},
		"textOnly": map[string]any{"text": "keep"},
	}

	out := UnwrapScored(in).(map[string]any)

	assert.Equal(t, "x", out["plain"])
	assert.Equal(t, "y", out["scored"])
	assert.Equal(t, []any{"z", "w"}, out["nested"].(map[string]any)["list"])
	assert.Equal(t, map[string]any{"text": "keep"}, out["textOnly"])
}
