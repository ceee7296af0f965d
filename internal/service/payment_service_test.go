package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	svc           *PaymentService
	loans         *testutil.MockLoanRepository
	payments      *testutil.MockPaymentRepository
	sessions      *testutil.MockOverrideSessionRepository
	notifications *testutil.MockNotificationRepository
	publisher     *testutil.MockEventPublisher
}

func setupPaymentService() *paymentFixture {
	f := &paymentFixture{
		loans:         testutil.NewMockLoanRepository(),
		payments:      testutil.NewMockPaymentRepository(),
		sessions:      testutil.NewMockOverrideSessionRepository(),
		notifications: testutil.NewMockNotificationRepository(),
		publisher:     &testutil.MockEventPublisher{},
	}
	notificationSvc := NewNotificationService(f.notifications)
	notificationSvc.SetEventPublisher(f.publisher)

	f.svc = NewPaymentService(f.payments, f.loans, f.sessions, notificationSvc)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestRecordPayment_CoversUpcomingInstallment(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))
	require.NoError(t, f.sessions.Save(session(testCustomerID, "loan-1"), domain.OverrideSnapshot{
		2: {Amount: d("100")},
		3: {Amount: d("150")},
	}))

	receipt, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("100")})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusCompleted, receipt.Payment.Status)
	assert.Equal(t, domain.PaymentTypeScheduled, receipt.Payment.Type)
	require.NotNil(t, receipt.Payment.InstallmentNumber)
	assert.Equal(t, 2, *receipt.Payment.InstallmentNumber)

	// 100 paid, 9.10 of it interest
	assert.True(t, receipt.Loan.Schedule[1].Paid)
	assert.True(t, receipt.Loan.CurrentBalance.Equal(d("819.10")), "balance %s", receipt.Loan.CurrentBalance)
	assert.Equal(t, 2, receipt.Loan.PaidPayments)

	// Override for the paid installment is dropped, others stay
	snap, _ := f.sessions.Load(session(testCustomerID, "loan-1"))
	_, staged := snap.Lookup(2)
	assert.False(t, staged)
	_, staged = snap.Lookup(3)
	assert.True(t, staged)

	assert.Equal(t, []string{"payment.created", "loan.updated", "notification.created"}, f.publisher.Types())
	unread, _ := f.notifications.CountUnread(testCustomerID)
	assert.Equal(t, int64(1), unread)
}

func TestRecordPayment_OverrideAmountIsWhatIsDue(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))
	require.NoError(t, f.sessions.Save(session(testCustomerID, "loan-1"), domain.OverrideSnapshot{
		2: {Amount: d("150")},
	}))

	receipt, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("120")})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPending, receipt.Payment.Status)
	assert.False(t, receipt.Loan.Schedule[1].Paid)
}

func TestRecordPayment_PartialStaysPending(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))

	receipt, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("60")})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPending, receipt.Payment.Status)
	assert.Equal(t, 2, *receipt.Payment.InstallmentNumber)
	assert.False(t, receipt.Loan.Schedule[1].Paid)
	assert.True(t, receipt.Loan.CurrentBalance.Equal(d("910")))
	assert.Len(t, f.payments.Payments, 1)
}

func TestRecordPayment_ExtraGoesToPrincipal(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))

	receipt, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{
		Amount: d("200"),
		Type:   domain.PaymentTypeExtra,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusCompleted, receipt.Payment.Status)
	assert.Nil(t, receipt.Payment.InstallmentNumber)
	assert.True(t, receipt.Loan.CurrentBalance.Equal(d("710")))
	assert.Equal(t, 1, receipt.Loan.PaidPayments)
}

func TestRecordPayment_Validation(t *testing.T) {
	tests := []struct {
		name    string
		loanID  string
		input   RecordPaymentInput
		wantErr error
	}{
		{"zero amount", "loan-1", RecordPaymentInput{Amount: d("0")}, domain.ErrInvalidPaymentAmount},
		{"negative amount", "loan-1", RecordPaymentInput{Amount: d("-10")}, domain.ErrInvalidPaymentAmount},
		{"unknown type", "loan-1", RecordPaymentInput{Amount: d("10"), Type: "refund"}, domain.ErrInvalidInput},
		{"unknown loan", "missing", RecordPaymentInput{Amount: d("10")}, domain.ErrLoanNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupPaymentService()
			f.loans.AddLoan(servicedLoan("loan-1"))

			_, err := f.svc.RecordPayment(context.Background(), testCustomerID, tt.loanID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.payments.Payments)
		})
	}
}

func TestRecordPayment_NothingDue(t *testing.T) {
	f := setupPaymentService()
	loan := servicedLoan("loan-1")
	for i := range loan.Schedule {
		loan.Schedule[i].Paid = true
	}
	f.loans.AddLoan(loan)

	_, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("100")})
	assert.ErrorIs(t, err, domain.ErrNothingDue)
}

func TestRecordPayment_InstallmentPaidConcurrently(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))

	// Another request settles installment 2 between the read and the write
	loan, err := f.loans.GetByID(testCustomerID, "loan-1")
	require.NoError(t, err)
	loan.Schedule[1].Paid = true
	f.loans.GetByIDFn = func(string, string) (*domain.Loan, error) {
		stale := *loan
		stale.Schedule = append([]domain.Installment(nil), loan.Schedule...)
		stale.Schedule[1].Paid = false
		return &stale, nil
	}

	_, err = f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("100")})
	assert.ErrorIs(t, err, domain.ErrInstallmentPaid)

	payments, err := f.svc.List(testCustomerID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Empty(t, f.publisher.Events)
}

func TestRecordPayment_RepositoryFailure(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))
	f.payments.CreateFn = func(*domain.Payment) (*domain.Payment, error) {
		return nil, errors.New("db down")
	}

	_, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("100")})
	assert.Error(t, err)
	assert.Empty(t, f.publisher.Events)
}

func TestPaymentService_Upcoming(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))    // next due Oct 20
	f.loans.AddLoan(unscheduledLoan("loan-2")) // next due Jun 30, already past

	upcoming, err := f.svc.Upcoming(testCustomerID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)

	assert.Equal(t, "loan-2", upcoming[0].LoanID)
	assert.Equal(t, 5, upcoming[0].InstallmentNumber)
	assert.Negative(t, upcoming[0].DaysUntilDue)
	assert.Equal(t, domain.UrgencyUrgent, upcoming[0].Urgency)

	assert.Equal(t, "loan-1", upcoming[1].LoanID)
	assert.Equal(t, 3, upcoming[1].DaysUntilDue)
	assert.Equal(t, domain.UrgencyUrgent, upcoming[1].Urgency)
	assert.True(t, upcoming[1].Amount.Equal(d("100")))
}

func TestPaymentService_ListAndGet(t *testing.T) {
	f := setupPaymentService()
	f.loans.AddLoan(servicedLoan("loan-1"))

	receipt, err := f.svc.RecordPayment(context.Background(), testCustomerID, "loan-1", RecordPaymentInput{Amount: d("100")})
	require.NoError(t, err)

	list, err := f.svc.List(testCustomerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := f.svc.Get(testCustomerID, receipt.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.Payment.ID, got.ID)

	_, err = f.svc.Get("someone-else", receipt.Payment.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
