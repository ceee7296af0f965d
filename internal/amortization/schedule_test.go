package amortization

import (
	"errors"
	"testing"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func rawSchedule(paid ...bool) []domain.Installment {
	schedule := make([]domain.Installment, len(paid))
	for i, p := range paid {
		schedule[i] = domain.Installment{
			Date:      date(2026, time.January, 15).AddDate(0, i, 0),
			Amount:    d("225"),
			Principal: d("175"),
			Interest:  d("50"),
			Balance:   d("9000"),
			Paid:      p,
		}
	}
	return schedule
}

func countStatuses(rows []domain.ScheduledInstallment) map[domain.InstallmentStatus]int {
	counts := make(map[domain.InstallmentStatus]int)
	for _, r := range rows {
		counts[r.Status]++
	}
	return counts
}

func TestAssignStatuses(t *testing.T) {
	tests := []struct {
		name string
		paid []bool
		want []domain.InstallmentStatus
	}{
		{
			name: "empty",
			paid: nil,
			want: []domain.InstallmentStatus{},
		},
		{
			name: "paid then unpaid",
			paid: []bool{true, true, false, false},
			want: []domain.InstallmentStatus{"paid", "paid", "upcoming", "scheduled"},
		},
		{
			name: "gap in paid entries",
			paid: []bool{true, false, true, false},
			want: []domain.InstallmentStatus{"paid", "upcoming", "paid", "scheduled"},
		},
		{
			name: "nothing paid",
			paid: []bool{false, false},
			want: []domain.InstallmentStatus{"upcoming", "scheduled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignStatuses(tt.paid))
		})
	}
}

func TestReconcile_AllPaid(t *testing.T) {
	rows := Reconcile(rawSchedule(true, true, true), nil)

	counts := countStatuses(rows)
	assert.Equal(t, 3, counts[domain.InstallmentStatusPaid])
	assert.Zero(t, counts[domain.InstallmentStatusUpcoming])
	assert.Zero(t, counts[domain.InstallmentStatusScheduled])
}

func TestReconcile_SingleUnpaidIsUpcoming(t *testing.T) {
	rows := Reconcile(rawSchedule(true, true, false), nil)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.InstallmentStatusPaid, rows[0].Status)
	assert.Equal(t, domain.InstallmentStatusPaid, rows[1].Status)
	assert.Equal(t, domain.InstallmentStatusUpcoming, rows[2].Status)
	assert.Zero(t, countStatuses(rows)[domain.InstallmentStatusScheduled])
}

func TestReconcile_NumbersAndValues(t *testing.T) {
	rows := Reconcile(rawSchedule(true, false, false), nil)

	for i, r := range rows {
		assert.Equal(t, i+1, r.Number)
		assert.False(t, r.IsModified)
		assert.True(t, r.Payment.Equal(r.OriginalPayment))
		assert.Equal(t, r.OriginalDate, r.Date)
	}
}

func TestReconcile_AppliesOverride(t *testing.T) {
	newDate := date(2026, time.March, 1)
	overrides := domain.OverrideSnapshot{
		2: {Amount: d("300"), Date: &newDate},
		3: {Amount: d("150")},
	}

	rows := Reconcile(rawSchedule(true, false, false), overrides)

	assert.False(t, rows[0].IsModified)

	assert.True(t, rows[1].IsModified)
	assert.True(t, rows[1].Payment.Equal(d("300")))
	assert.True(t, rows[1].OriginalPayment.Equal(d("225")))
	assert.Equal(t, newDate, rows[1].Date)
	assert.Equal(t, date(2026, time.February, 15), rows[1].OriginalDate)

	assert.True(t, rows[2].IsModified)
	assert.True(t, rows[2].Payment.Equal(d("150")))
	assert.Equal(t, rows[2].OriginalDate, rows[2].Date, "amount-only override keeps the date")
}

func TestReconcile_OverrideForUnknownNumberIgnored(t *testing.T) {
	rows := Reconcile(rawSchedule(false), domain.OverrideSnapshot{7: {Amount: d("300")}})

	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsModified)
}

func TestGenerate_StatusesAndDates(t *testing.T) {
	loan := testLoan("1200", "0", "100")
	start := date(2026, time.January, 31)

	rows, err := Generate(loan, 12, 3, start, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	assert.Equal(t, date(2026, time.February, 28), rows[0].Date)
	assert.Equal(t, date(2026, time.March, 31), rows[1].Date)
	assert.Equal(t, date(2027, time.January, 31), rows[11].Date)

	for i, r := range rows {
		switch {
		case i < 3:
			assert.Equal(t, domain.InstallmentStatusPaid, r.Status)
		case i == 3:
			assert.Equal(t, domain.InstallmentStatusUpcoming, r.Status)
		default:
			assert.Equal(t, domain.InstallmentStatusScheduled, r.Status)
		}
	}
	assert.True(t, rows[11].Balance.IsZero())
}

func TestGenerate_Amortizes(t *testing.T) {
	loan := testLoan("1000", "12", "100")

	rows, err := Generate(loan, 3, 0, date(2026, time.January, 1), nil)
	require.NoError(t, err)

	// Month 1: interest 10, principal 90, balance 910
	assert.True(t, rows[0].Interest.Equal(d("10")))
	assert.True(t, rows[0].Principal.Equal(d("90")))
	assert.True(t, rows[0].Balance.Equal(d("910")))
	// Month 2: interest 9.10, principal 90.90, balance 819.10
	assert.True(t, rows[1].Interest.Equal(d("9.1")))
	assert.True(t, rows[1].Balance.Equal(d("819.1")))
}

func TestGenerate_BalanceNeverNegative(t *testing.T) {
	rows, err := Generate(testLoan("250", "0", "100"), 5, 0, date(2026, time.January, 1), nil)
	require.NoError(t, err)

	for _, r := range rows {
		assert.False(t, r.Balance.IsNegative())
	}
	assert.True(t, rows[4].Balance.IsZero())
}

func TestGenerate_PaidPaymentsBeyondTotal(t *testing.T) {
	rows, err := Generate(testLoan("1000", "0", "100"), 3, 5, date(2026, time.January, 1), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, countStatuses(rows)[domain.InstallmentStatusPaid])
}

func TestGenerate_AppliesOverrides(t *testing.T) {
	rows, err := Generate(testLoan("1000", "0", "100"), 3, 0, date(2026, time.January, 1), domain.OverrideSnapshot{
		1: {Amount: d("120")},
	})
	require.NoError(t, err)

	assert.True(t, rows[0].IsModified)
	assert.True(t, rows[0].Payment.Equal(d("120")))
	assert.True(t, rows[0].OriginalPayment.Equal(d("100")))
}

func TestGenerate_InvalidCounts(t *testing.T) {
	_, err := Generate(testLoan("1000", "0", "100"), 0, 0, date(2026, time.January, 1), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = Generate(testLoan("1000", "0", "100"), 3, -1, date(2026, time.January, 1), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBuildSchedule_PrefersServerSchedule(t *testing.T) {
	loan := testLoan("10000", "6", "225")
	loan.Schedule = rawSchedule(true, false)

	rows, generated, err := BuildSchedule(loan, nil, date(2026, time.June, 1))
	require.NoError(t, err)

	assert.False(t, generated)
	assert.Len(t, rows, 2)
}

func TestBuildSchedule_FallsBackWithDefaults(t *testing.T) {
	loan := testLoan("10000", "6", "225")
	now := date(2026, time.June, 10)

	rows, generated, err := BuildSchedule(loan, nil, now)
	require.NoError(t, err)

	assert.True(t, generated)
	assert.Len(t, rows, DefaultTotalPayments)
	assert.Equal(t, date(2026, time.July, 10), rows[0].Date)
	assert.Equal(t, domain.InstallmentStatusUpcoming, rows[0].Status)
}

func TestBuildSchedule_FallsBackWithLoanCounts(t *testing.T) {
	loan := testLoan("10000", "6", "225")
	start := date(2025, time.December, 5)
	loan.StartDate = &start
	loan.TotalPayments = 48
	loan.PaidPayments = 6

	rows, generated, err := BuildSchedule(loan, nil, date(2026, time.June, 10))
	require.NoError(t, err)

	assert.True(t, generated)
	assert.Len(t, rows, 48)
	assert.Equal(t, date(2026, time.January, 5), rows[0].Date)
	assert.Equal(t, domain.InstallmentStatusUpcoming, rows[6].Status)
}
