package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/amortization"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/metrics"
	"github.com/dafibh/mpwr/portal-backend/internal/tracing"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LoanService serves loans, their reconciled schedules and payoff projections.
// Staged overrides live in the session repository, never in the loan store.
type LoanService struct {
	loanRepo       domain.LoanRepository
	sessions       domain.OverrideSessionRepository
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, sessions domain.OverrideSessionRepository) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		sessions: sessions,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LoanService) publishEvent(customerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(customerID, event)
	}
}

// OverrideBounds is the inclusive range a staged payment must fall in
type OverrideBounds struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// LoanSchedule is a reconciled schedule with its summary
type LoanSchedule struct {
	LoanID       string                        `json:"loanId"`
	Installments []domain.ScheduledInstallment `json:"installments"`
	Summary      domain.ScheduleSummary        `json:"summary"`
	Upcoming     *domain.ScheduledInstallment  `json:"upcoming"`
	Bounds       OverrideBounds                `json:"overrideBounds"`
}

// ListLoans returns every loan of a customer
func (s *LoanService) ListLoans(customerID string) ([]*domain.Loan, error) {
	return s.loanRepo.GetAllByCustomer(customerID)
}

// GetLoan returns one loan of a customer
func (s *LoanService) GetLoan(customerID, loanID string) (*domain.Loan, error) {
	return s.loanRepo.GetByID(customerID, loanID)
}

// GetSchedule reconciles the loan's schedule against the session's overrides
func (s *LoanService) GetSchedule(ctx context.Context, customerID, loanID string) (*LoanSchedule, error) {
	_, span := tracing.Tracer.Start(ctx, "LoanService.GetSchedule")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.sessions.Load(session(customerID, loanID))
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	schedule, err := s.buildSchedule(loan, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("schedule.installments", len(schedule.Installments)),
		attribute.Bool("schedule.generated", schedule.Summary.Generated),
	)
	return schedule, nil
}

// Project compares paying the minimum plus extra against the minimum alone
func (s *LoanService) Project(ctx context.Context, customerID, loanID string, extra decimal.Decimal) (*domain.Projection, error) {
	_, span := tracing.Tracer.Start(ctx, "LoanService.Project")
	defer span.End()
	span.SetAttributes(
		attribute.String("loan.id", loanID),
		attribute.String("projection.extra", extra.String()),
	)

	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}

	projection, err := amortization.Compare(*loan, extra)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.Projections.WithLabelValues(string(projection.Outcome)).Inc()
	span.SetAttributes(
		attribute.String("projection.outcome", string(projection.Outcome)),
		attribute.Int("projection.months", projection.MonthsToPayoff),
	)
	return &projection, nil
}

// StageOverride stages a payment edit for one unpaid installment and
// returns the schedule as it now reconciles
func (s *LoanService) StageOverride(ctx context.Context, customerID, loanID string, number int, amount decimal.Decimal, date *time.Time) (*LoanSchedule, error) {
	_, span := tracing.Tracer.Start(ctx, "LoanService.StageOverride")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID), attribute.Int("installment.number", number))

	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}
	if err := loan.ValidateTerms(); err != nil {
		return nil, err
	}

	// Check the target against the schedule the borrower is looking at
	rows, _, err := amortization.BuildSchedule(*loan, nil, s.now())
	if err != nil {
		return nil, err
	}
	if number < 1 || number > len(rows) {
		return nil, domain.ErrInstallmentNotFound
	}
	if rows[number-1].Status == domain.InstallmentStatusPaid {
		return nil, fmt.Errorf("%w: installment %d is already paid", domain.ErrInvalidInput, number)
	}

	sess := session(customerID, loanID)
	snapshot, err := s.sessions.Load(sess)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	store := amortization.RestoreOverrideStore(loan.MinPayment, snapshot)
	if err := store.Stage(number, amount, date); err != nil {
		if errors.Is(err, domain.ErrOverrideRejected) {
			metrics.OverrideRejections.Inc()
		}
		return nil, err
	}

	return s.saveAndBuild(loan, sess, store.Snapshot())
}

// ClearOverride drops the staged edit of one installment
func (s *LoanService) ClearOverride(customerID, loanID string, number int) (*LoanSchedule, error) {
	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}

	sess := session(customerID, loanID)
	snapshot, err := s.sessions.Load(sess)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	store := amortization.RestoreOverrideStore(loan.MinPayment, snapshot)
	store.Clear(number)
	return s.saveAndBuild(loan, sess, store.Snapshot())
}

// ResetOverrides drops every staged edit of a loan
func (s *LoanService) ResetOverrides(customerID, loanID string) (*LoanSchedule, error) {
	loan, err := s.loanRepo.GetByID(customerID, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(session(customerID, loanID)); err != nil {
		return nil, fmt.Errorf("reset overrides: %w", err)
	}

	schedule, err := s.buildSchedule(loan, nil)
	if err != nil {
		return nil, err
	}
	s.publishEvent(customerID, websocket.ScheduleModified(schedule))
	return schedule, nil
}

func (s *LoanService) saveAndBuild(loan *domain.Loan, sess domain.OverrideSession, snapshot domain.OverrideSnapshot) (*LoanSchedule, error) {
	if err := s.sessions.Save(sess, snapshot); err != nil {
		return nil, fmt.Errorf("save overrides: %w", err)
	}

	schedule, err := s.buildSchedule(loan, snapshot)
	if err != nil {
		return nil, err
	}
	s.publishEvent(loan.CustomerID, websocket.ScheduleModified(schedule))
	return schedule, nil
}

func (s *LoanService) buildSchedule(loan *domain.Loan, snapshot domain.OverrideSnapshot) (*LoanSchedule, error) {
	rows, generated, err := amortization.BuildSchedule(*loan, snapshot, s.now())
	if err != nil {
		return nil, err
	}

	source := "servicing"
	if generated {
		source = "generated"
	}
	metrics.Schedules.WithLabelValues(source).Inc()

	lower, upper := amortization.NewOverrideStore(loan.MinPayment).Bounds()
	return &LoanSchedule{
		LoanID:       loan.ID,
		Installments: rows,
		Summary:      domain.Summarize(rows, generated),
		Upcoming:     domain.Upcoming(rows),
		Bounds:       OverrideBounds{Min: lower, Max: upper},
	}, nil
}

func session(customerID, loanID string) domain.OverrideSession {
	return domain.OverrideSession{CustomerID: customerID, LoanID: loanID}
}
