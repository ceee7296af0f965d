package service

import (
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DashboardService assembles the borrower landing page
type DashboardService struct {
	loanRepo        domain.LoanRepository
	documentRepo    domain.DocumentRepository
	paymentService  *PaymentService
	notificationSvc *NotificationService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	loanRepo domain.LoanRepository,
	documentRepo domain.DocumentRepository,
	paymentService *PaymentService,
	notificationSvc *NotificationService,
) *DashboardService {
	return &DashboardService{
		loanRepo:        loanRepo,
		documentRepo:    documentRepo,
		paymentService:  paymentService,
		notificationSvc: notificationSvc,
	}
}

// GetSummary returns the dashboard summary for a customer
func (s *DashboardService) GetSummary(customerID string) (*domain.DashboardSummary, error) {
	// 1. Loan cards and total balance
	loans, err := s.loanRepo.GetAllByCustomer(customerID)
	if err != nil {
		return nil, err
	}

	overviews := make([]domain.LoanOverview, 0, len(loans))
	totalBalance := decimal.Zero
	for _, loan := range loans {
		overviews = append(overviews, domain.LoanOverview{
			LoanID:         loan.ID,
			Name:           loan.Name,
			Status:         loan.Status,
			OriginalAmount: loan.OriginalAmount,
			CurrentBalance: loan.CurrentBalance,
			PaidAmount:     loan.PaidAmount(),
			Progress:       loan.Progress(),
			MonthlyPayment: loan.MonthlyPayment,
			InterestRate:   loan.InterestRate,
			PaidPayments:   loan.PaidPayments,
			TotalPayments:  loan.TotalPayments,
		})
		totalBalance = totalBalance.Add(loan.CurrentBalance)
	}

	// 2. Soonest payment across loans
	upcoming, err := s.paymentService.Upcoming(customerID)
	if err != nil {
		return nil, err
	}
	var next *domain.UpcomingPayment
	if len(upcoming) > 0 {
		next = &upcoming[0]
	}

	// 3. Documents waiting on the borrower
	docs, err := s.documentRepo.GetAllByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	pending := make([]*domain.Document, 0)
	for _, doc := range docs {
		if doc.Status.NeedsAction() {
			pending = append(pending, doc)
		}
	}

	// 4. Unread inbox count
	unread, err := s.notificationSvc.UnreadCount(customerID)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		Loans:            overviews,
		TotalBalance:     totalBalance,
		UpcomingPayment:  next,
		PendingDocuments: pending,
		UnreadCount:      unread,
	}, nil
}
