package domain

import "github.com/shopspring/decimal"

// LoanOverview is the per-loan card of the dashboard
type LoanOverview struct {
	LoanID         string          `json:"loanId"`
	Name           string          `json:"name"`
	Status         LoanStatus      `json:"status"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Progress       decimal.Decimal `json:"progress"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	PaidPayments   int             `json:"paidPayments"`
	TotalPayments  int             `json:"totalPayments"`
}

// DashboardSummary is everything the landing page needs in one response
type DashboardSummary struct {
	Loans            []LoanOverview   `json:"loans"`
	TotalBalance     decimal.Decimal  `json:"totalBalance"`
	UpcomingPayment  *UpcomingPayment `json:"upcomingPayment"`
	PendingDocuments []*Document      `json:"pendingDocuments"`
	UnreadCount      int64            `json:"unreadCount"`
}
