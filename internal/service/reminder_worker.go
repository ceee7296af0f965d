package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/rs/zerolog"
)

// ReminderWorker is a background worker that periodically sends due-date
// reminders for upcoming installments
type ReminderWorker struct {
	paymentService *PaymentService
	notifications  *NotificationService
	customerRepo   domain.CustomerRepository
	logger         zerolog.Logger
	interval       time.Duration
	leadDays       int
	stopCh         chan struct{}
	doneCh         chan struct{}
	mu             sync.Mutex
	running        bool
}

// ReminderWorkerConfig holds configuration for the reminder worker
type ReminderWorkerConfig struct {
	Interval time.Duration // How often to scan for due installments
	LeadDays int           // Remind when an installment is due within this many days
}

// DefaultReminderWorkerConfig returns sensible defaults
func DefaultReminderWorkerConfig() ReminderWorkerConfig {
	return ReminderWorkerConfig{
		Interval: 1 * time.Hour,
		LeadDays: 3,
	}
}

// ReminderResult summarizes one reminder scan
type ReminderResult struct {
	Customers int
	Sent      int
	Skipped   int
	Errors    int
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(
	paymentService *PaymentService,
	notifications *NotificationService,
	customerRepo domain.CustomerRepository,
	logger zerolog.Logger,
	config ReminderWorkerConfig,
) *ReminderWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}
	if config.LeadDays < 0 {
		config.LeadDays = DefaultReminderWorkerConfig().LeadDays
	}

	return &ReminderWorker{
		paymentService: paymentService,
		notifications:  notifications,
		customerRepo:   customerRepo,
		logger:         logger.With().Str("component", "reminder_worker").Logger(),
		interval:       config.Interval,
		leadDays:       config.LeadDays,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background reminder scan
func (w *ReminderWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("lead_days", w.leadDays).
		Msg("Starting reminder worker")

	go w.run(ctx)
}

// Stop gracefully stops the reminder worker
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reminder worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Reminder worker stopped")
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *ReminderWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// RunOnce scans every active customer and sends reminders that have not
// been sent yet. Reminders are keyed by loan, installment and due date, so
// repeated scans are harmless.
func (w *ReminderWorker) RunOnce(ctx context.Context) ReminderResult {
	w.logger.Debug().Msg("Starting reminder scan")
	startTime := time.Now()
	var result ReminderResult

	customers, err := w.customerRepo.ListActiveIDs()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list customers for reminder scan")
		return result
	}

	for _, customerID := range customers {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping scan")
			return result
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping scan")
			return result
		default:
		}

		result.Customers++
		upcoming, err := w.paymentService.Upcoming(customerID)
		if err != nil {
			w.logger.Error().Err(err).Str("customer_id", customerID).Msg("Failed to load upcoming payments")
			result.Errors++
			continue
		}

		for _, due := range upcoming {
			if due.DaysUntilDue < 0 || due.DaysUntilDue > w.leadDays {
				continue
			}
			if w.notifications.NotifyOnce(customerID, reminderKey(due), domain.NotificationKindPayment,
				"Payment due soon", reminderMessage(due)) {
				result.Sent++
			} else {
				result.Skipped++
			}
		}
	}

	w.logger.Info().
		Int("customers", result.Customers).
		Int("sent", result.Sent).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed reminder scan")
	return result
}

// IsRunning returns whether the worker is currently running
func (w *ReminderWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func reminderKey(due domain.UpcomingPayment) string {
	return fmt.Sprintf("reminder:%s:%d:%s", due.LoanID, due.InstallmentNumber, due.DueDate.Format("2006-01-02"))
}

func reminderMessage(due domain.UpcomingPayment) string {
	when := fmt.Sprintf("in %d days", due.DaysUntilDue)
	switch due.DaysUntilDue {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	}
	return fmt.Sprintf("Your payment of $%s for %s is due %s.", due.Amount.StringFixed(2), due.LoanName, when)
}
