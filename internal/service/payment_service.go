package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/amortization"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/tracing"
	"github.com/dafibh/mpwr/portal-backend/internal/util"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// PaymentService records borrower payments and derives what is due next
type PaymentService struct {
	paymentRepo    domain.PaymentRepository
	loanRepo       domain.LoanRepository
	sessions       domain.OverrideSessionRepository
	notifications  *NotificationService
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	loanRepo domain.LoanRepository,
	sessions domain.OverrideSessionRepository,
	notifications *NotificationService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		loanRepo:      loanRepo,
		sessions:      sessions,
		notifications: notifications,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishEvent(customerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(customerID, event)
	}
}

// RecordPaymentInput contains input for recording a payment
type RecordPaymentInput struct {
	Amount decimal.Decimal
	Type   domain.PaymentType
}

// PaymentReceipt is the outcome of a recorded payment
type PaymentReceipt struct {
	Payment *domain.Payment `json:"payment"`
	Loan    *domain.Loan    `json:"loan"`
}

// RecordPayment records a payment against a loan. A scheduled payment that
// covers the upcoming installment marks it paid and drops any staged
// override for it; a smaller one is kept pending for the servicer. Extra
// payments go to principal.
func (s *PaymentService) RecordPayment(ctx context.Context, customerID, loanID string, input RecordPaymentInput) (*PaymentReceipt, error) {
	_, span := tracing.Tracer.Start(ctx, "PaymentService.RecordPayment")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID), attribute.String("payment.type", string(input.Type)))

	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidPaymentAmount
	}
	if input.Type == "" {
		input.Type = domain.PaymentTypeScheduled
	}

	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		CustomerID: customerID,
		LoanID:     loanID,
		Amount:     input.Amount.Round(2),
		Type:       input.Type,
		Status:     domain.PaymentStatusCompleted,
		PaidAt:     s.now().UTC(),
	}

	switch input.Type {
	case domain.PaymentTypeScheduled:
		loan, err = s.applyScheduled(loan, payment)
	case domain.PaymentTypeExtra:
		loan, err = s.loanRepo.ApplyExtraPrincipal(customerID, loanID, payment.Amount)
	default:
		return nil, fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, input.Type)
	}
	if err != nil {
		return nil, err
	}

	created, err := s.paymentRepo.Create(payment)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("customer_id", customerID).
		Str("loan_id", loanID).
		Str("amount", created.Amount.StringFixed(2)).
		Str("status", string(created.Status)).
		Msg("Payment recorded")

	s.publishEvent(customerID, websocket.PaymentCreated(created))
	s.publishEvent(customerID, websocket.LoanUpdated(loan))
	if s.notifications != nil {
		s.notifications.Notify(customerID, domain.NotificationKindPayment, "Payment received",
			fmt.Sprintf("We received your payment of $%s for %s.", created.Amount.StringFixed(2), loan.Name))
	}

	return &PaymentReceipt{Payment: created, Loan: loan}, nil
}

func (s *PaymentService) applyScheduled(loan *domain.Loan, payment *domain.Payment) (*domain.Loan, error) {
	sess := session(loan.CustomerID, loan.ID)
	snapshot, err := s.sessions.Load(sess)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	rows, _, err := amortization.BuildSchedule(*loan, snapshot, s.now())
	if err != nil {
		return nil, err
	}
	upcoming := domain.Upcoming(rows)
	if upcoming == nil {
		return nil, domain.ErrNothingDue
	}

	number := upcoming.Number
	payment.InstallmentNumber = &number

	if payment.Amount.LessThan(upcoming.Payment.Round(2)) {
		payment.Status = domain.PaymentStatusPending
		return loan, nil
	}

	// Interest due is fixed by the schedule; the rest reduces principal
	principal := decimal.Max(decimal.Zero, payment.Amount.Sub(upcoming.Interest))
	updated, err := s.loanRepo.MarkInstallmentPaid(loan.CustomerID, loan.ID, number, principal)
	if err != nil {
		return nil, err
	}

	if _, staged := snapshot.Lookup(number); staged {
		store := amortization.RestoreOverrideStore(loan.MinPayment, snapshot)
		store.Clear(number)
		if err := s.sessions.Save(sess, store.Snapshot()); err != nil {
			// The payment stands; a stale override only affects display
			log.Warn().Err(err).Str("loan_id", loan.ID).Int("installment", number).Msg("Failed to clear override after payment")
		}
	}
	return updated, nil
}

// List returns a customer's payment history
func (s *PaymentService) List(customerID string) ([]*domain.Payment, error) {
	return s.paymentRepo.GetAllByCustomer(customerID)
}

// Get returns one payment
func (s *PaymentService) Get(customerID string, id uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(customerID, id)
}

// Upcoming returns the next installment due on each loan, soonest first
func (s *PaymentService) Upcoming(customerID string) ([]domain.UpcomingPayment, error) {
	loans, err := s.loanRepo.GetAllByCustomer(customerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := make([]domain.UpcomingPayment, 0, len(loans))
	for _, loan := range loans {
		snapshot, err := s.sessions.Load(session(customerID, loan.ID))
		if err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
		rows, _, err := amortization.BuildSchedule(*loan, snapshot, now)
		if err != nil {
			log.Warn().Err(err).Str("loan_id", loan.ID).Msg("Skipping loan without a usable schedule")
			continue
		}
		next := domain.Upcoming(rows)
		if next == nil {
			continue
		}

		days := util.DaysUntil(next.Date, now)
		upcoming = append(upcoming, domain.UpcomingPayment{
			LoanID:            loan.ID,
			LoanName:          loan.Name,
			InstallmentNumber: next.Number,
			Amount:            next.Payment.Round(2),
			DueDate:           next.Date,
			DaysUntilDue:      days,
			Urgency:           domain.UrgencyFor(days),
			IsModified:        next.IsModified,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	return upcoming, nil
}
