package amortization

import (
	"fmt"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/util"
	"github.com/shopspring/decimal"
)

// DefaultTotalPayments is used to generate a schedule for a loan that
// reports neither a schedule nor a payment count.
const DefaultTotalPayments = 24

// AssignStatuses derives display statuses in one pass: paid entries stay
// paid, the first unpaid entry is upcoming and later unpaid ones are
// scheduled.
func AssignStatuses(paid []bool) []domain.InstallmentStatus {
	statuses := make([]domain.InstallmentStatus, len(paid))
	seenUnpaid := false
	for i, p := range paid {
		switch {
		case p:
			statuses[i] = domain.InstallmentStatusPaid
		case !seenUnpaid:
			statuses[i] = domain.InstallmentStatusUpcoming
			seenUnpaid = true
		default:
			statuses[i] = domain.InstallmentStatusScheduled
		}
	}
	return statuses
}

// Reconcile merges the authoritative schedule with staged overrides.
// Numbers are 1-based positions in schedule.
func Reconcile(schedule []domain.Installment, overrides domain.OverrideSnapshot) []domain.ScheduledInstallment {
	paid := make([]bool, len(schedule))
	for i, inst := range schedule {
		paid[i] = inst.Paid
	}
	statuses := AssignStatuses(paid)

	rows := make([]domain.ScheduledInstallment, len(schedule))
	for i, inst := range schedule {
		rows[i] = domain.ScheduledInstallment{
			Number:          i + 1,
			Date:            inst.Date,
			OriginalDate:    inst.Date,
			Payment:         inst.Amount,
			OriginalPayment: inst.Amount,
			Principal:       inst.Principal,
			Interest:        inst.Interest,
			Balance:         inst.Balance,
			Status:          statuses[i],
		}
		applyOverride(&rows[i], overrides)
	}
	return rows
}

// Generate synthesizes a schedule for a loan the servicing system sent
// without one. Installment i falls i+1 months after startDate and is
// amortized from the original amount with the loan's monthly payment.
func Generate(loan domain.Loan, totalPayments, paidPayments int, startDate time.Time, overrides domain.OverrideSnapshot) ([]domain.ScheduledInstallment, error) {
	if totalPayments <= 0 {
		return nil, fmt.Errorf("%w: total payments must be positive", domain.ErrInvalidInput)
	}
	if paidPayments < 0 {
		return nil, fmt.Errorf("%w: paid payments must not be negative", domain.ErrInvalidInput)
	}

	payment := loan.MonthlyPayment
	if !payment.IsPositive() {
		payment = loan.MinPayment
	}
	rate := loan.MonthlyRate()
	balance := loan.OriginalAmount

	paid := make([]bool, totalPayments)
	for i := 0; i < totalPayments && i < paidPayments; i++ {
		paid[i] = true
	}
	statuses := AssignStatuses(paid)

	rows := make([]domain.ScheduledInstallment, totalPayments)
	for i := 0; i < totalPayments; i++ {
		interest := balance.Mul(rate).Round(interestPlaces)
		principal := payment.Sub(interest)
		balance = decimal.Max(decimal.Zero, balance.Sub(principal))

		date := util.AddMonthsClamped(startDate, i+1)
		rows[i] = domain.ScheduledInstallment{
			Number:          i + 1,
			Date:            date,
			OriginalDate:    date,
			Payment:         payment,
			OriginalPayment: payment,
			Principal:       principal.Round(2),
			Interest:        interest.Round(2),
			Balance:         balance.Round(2),
			Status:          statuses[i],
		}
		applyOverride(&rows[i], overrides)
	}
	return rows, nil
}

// BuildSchedule reconciles the loan's own schedule when it has one and
// falls back to Generate otherwise, taking counts and start date from the
// loan. generated reports which path was used.
func BuildSchedule(loan domain.Loan, overrides domain.OverrideSnapshot, now time.Time) (rows []domain.ScheduledInstallment, generated bool, err error) {
	if loan.HasSchedule() {
		return Reconcile(loan.Schedule, overrides), false, nil
	}

	total := loan.TotalPayments
	if total <= 0 {
		total = DefaultTotalPayments
	}
	start := now
	if loan.StartDate != nil {
		start = *loan.StartDate
	}
	rows, err = Generate(loan, total, loan.PaidPayments, start, overrides)
	return rows, true, err
}

func applyOverride(row *domain.ScheduledInstallment, overrides domain.OverrideSnapshot) {
	o, ok := overrides.Lookup(row.Number)
	if !ok {
		return
	}
	row.Payment = o.Amount
	if o.Date != nil {
		row.Date = *o.Date
	}
	row.IsModified = true
}
