package service

import (
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const testCustomerID = "borrower-1"

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// servicedLoan returns a 12% APR loan with three installments, the first paid
func servicedLoan(id string) *domain.Loan {
	return &domain.Loan{
		ID:             id,
		CustomerID:     testCustomerID,
		Name:           "Auto Loan",
		Status:         domain.LoanStatusActive,
		OriginalAmount: d("1000"),
		CurrentBalance: d("910"),
		InterestRate:   d("12"),
		MonthlyPayment: d("100"),
		MinPayment:     d("100"),
		TotalPayments:  3,
		PaidPayments:   1,
		Schedule: []domain.Installment{
			{Date: date(2026, 9, 20), Amount: d("100"), Principal: d("90"), Interest: d("10"), Balance: d("910"), Paid: true},
			{Date: date(2026, 10, 20), Amount: d("100"), Principal: d("90.90"), Interest: d("9.10"), Balance: d("819.10")},
			{Date: date(2026, 11, 20), Amount: d("100"), Principal: d("91.81"), Interest: d("8.19"), Balance: d("727.29")},
		},
	}
}

// unscheduledLoan returns a loan the servicer sent without a schedule
func unscheduledLoan(id string) *domain.Loan {
	start := date(2026, 1, 31)
	return &domain.Loan{
		ID:             id,
		CustomerID:     testCustomerID,
		Name:           "Personal Loan",
		Status:         domain.LoanStatusActive,
		OriginalAmount: d("1200"),
		CurrentBalance: d("800"),
		InterestRate:   d("0"),
		MonthlyPayment: d("100"),
		MinPayment:     d("100"),
		TotalPayments:  12,
		PaidPayments:   4,
		StartDate:      &start,
	}
}
