package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the display status derived for a schedule row
type InstallmentStatus string

const (
	InstallmentStatusPaid      InstallmentStatus = "paid"
	InstallmentStatusUpcoming  InstallmentStatus = "upcoming"
	InstallmentStatusScheduled InstallmentStatus = "scheduled"
)

// ScheduledInstallment is a reconciled schedule row. Payment and Date carry
// any staged override; OriginalPayment and OriginalDate never do.
type ScheduledInstallment struct {
	Number          int               `json:"number"`
	Date            time.Time         `json:"date"`
	OriginalDate    time.Time         `json:"originalDate"`
	Payment         decimal.Decimal   `json:"payment"`
	OriginalPayment decimal.Decimal   `json:"originalPayment"`
	Principal       decimal.Decimal   `json:"principal"`
	Interest        decimal.Decimal   `json:"interest"`
	Balance         decimal.Decimal   `json:"balance"`
	Status          InstallmentStatus `json:"status"`
	IsModified      bool              `json:"isModified"`
}

// ScheduleSummary aggregates a reconciled schedule
type ScheduleSummary struct {
	TotalPayments     int             `json:"totalPayments"`
	CompletedPayments int             `json:"completedPayments"`
	RemainingPayments int             `json:"remainingPayments"`
	RemainingAmount   decimal.Decimal `json:"remainingAmount"`
	ModifiedCount     int             `json:"modifiedCount"`
	Generated         bool            `json:"generated"`
}

// Summarize counts paid and outstanding rows of a reconciled schedule
func Summarize(rows []ScheduledInstallment, generated bool) ScheduleSummary {
	summary := ScheduleSummary{
		TotalPayments:   len(rows),
		RemainingAmount: decimal.Zero,
		Generated:       generated,
	}
	for _, row := range rows {
		if row.IsModified {
			summary.ModifiedCount++
		}
		if row.Status == InstallmentStatusPaid {
			summary.CompletedPayments++
			continue
		}
		summary.RemainingPayments++
		summary.RemainingAmount = summary.RemainingAmount.Add(row.Payment)
	}
	return summary
}

// Upcoming returns the row marked upcoming, or nil when everything is paid
func Upcoming(rows []ScheduledInstallment) *ScheduledInstallment {
	for i := range rows {
		if rows[i].Status == InstallmentStatusUpcoming {
			return &rows[i]
		}
	}
	return nil
}
