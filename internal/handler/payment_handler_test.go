package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/dafibh/mpwr/portal-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaymentHandler() (*PaymentHandler, *testutil.MockLoanRepository, *testutil.MockPaymentRepository) {
	loanRepo := testutil.NewMockLoanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	loanRepo.AddLoan(testLoan("loan-1"))

	notifications := service.NewNotificationService(testutil.NewMockNotificationRepository())
	paymentService := service.NewPaymentService(paymentRepo, loanRepo, testutil.NewMockOverrideSessionRepository(), notifications)
	return NewPaymentHandler(paymentService), loanRepo, paymentRepo
}

func TestRecordPayment_Success(t *testing.T) {
	handler, loanRepo, _ := setupPaymentHandler()
	body := strings.NewReader(`{"amount": "100.00", "type": "scheduled"}`)
	c, rec := newAuthedContext(http.MethodPost, "/api/customers/borrower-1/loans/loan-1/payment", body, testCustomerID)
	withParams(c, "customerId", testCustomerID, "loanId", "loan-1")

	require.NoError(t, handler.RecordPayment(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt service.PaymentReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, domain.PaymentStatusCompleted, receipt.Payment.Status)
	require.NotNil(t, receipt.Payment.InstallmentNumber)
	assert.Equal(t, 2, *receipt.Payment.InstallmentNumber)

	loan, _ := loanRepo.GetByID(testCustomerID, "loan-1")
	assert.True(t, loan.Schedule[1].Paid)
}

func TestRecordPayment_DefaultsToScheduled(t *testing.T) {
	handler, _, paymentRepo := setupPaymentHandler()
	body := strings.NewReader(`{"amount": 40}`)
	c, rec := newAuthedContext(http.MethodPost, "/api/customers/borrower-1/loans/loan-1/payment", body, testCustomerID)
	withParams(c, "customerId", testCustomerID, "loanId", "loan-1")

	require.NoError(t, handler.RecordPayment(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, paymentRepo.Payments, 1)
	for _, p := range paymentRepo.Payments {
		assert.Equal(t, domain.PaymentTypeScheduled, p.Type)
		assert.Equal(t, domain.PaymentStatusPending, p.Status)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	tests := []struct {
		name       string
		loanID     string
		body       string
		wantStatus int
	}{
		{"malformed body", "loan-1", `{"amount": `, http.StatusBadRequest},
		{"zero amount", "loan-1", `{"amount": "0"}`, http.StatusBadRequest},
		{"unknown type", "loan-1", `{"amount": "10", "type": "refund"}`, http.StatusBadRequest},
		{"unknown loan", "loan-9", `{"amount": "10"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, paymentRepo := setupPaymentHandler()
			c, rec := newAuthedContext(http.MethodPost, "/api/customers/borrower-1/loans/"+tt.loanID+"/payment", strings.NewReader(tt.body), testCustomerID)
			withParams(c, "customerId", testCustomerID, "loanId", tt.loanID)

			require.NoError(t, handler.RecordPayment(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, paymentRepo.Payments)
		})
	}
}

func TestRecordPayment_NothingDue(t *testing.T) {
	handler, loanRepo, _ := setupPaymentHandler()
	loan, _ := loanRepo.GetByID(testCustomerID, "loan-1")
	for i := range loan.Schedule {
		loan.Schedule[i].Paid = true
	}

	c, rec := newAuthedContext(http.MethodPost, "/api/customers/borrower-1/loans/loan-1/payment", strings.NewReader(`{"amount": 100}`), testCustomerID)
	withParams(c, "customerId", testCustomerID, "loanId", "loan-1")

	require.NoError(t, handler.RecordPayment(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetPayment(t *testing.T) {
	handler, _, paymentRepo := setupPaymentHandler()
	payment, _ := paymentRepo.Create(&domain.Payment{CustomerID: testCustomerID, LoanID: "loan-1", Type: domain.PaymentTypeExtra})

	c, rec := newAuthedContext(http.MethodGet, "/", nil, testCustomerID)
	withParams(c, "customerId", testCustomerID, "paymentId", payment.ID.String())
	require.NoError(t, handler.GetPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newAuthedContext(http.MethodGet, "/", nil, testCustomerID)
	withParams(c, "customerId", testCustomerID, "paymentId", uuid.NewString())
	require.NoError(t, handler.GetPayment(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newAuthedContext(http.MethodGet, "/", nil, testCustomerID)
	withParams(c, "customerId", testCustomerID, "paymentId", "not-a-uuid")
	require.NoError(t, handler.GetPayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentsAndUpcoming(t *testing.T) {
	handler, _, paymentRepo := setupPaymentHandler()
	_, _ = paymentRepo.Create(&domain.Payment{CustomerID: testCustomerID, LoanID: "loan-1"})
	_, _ = paymentRepo.Create(&domain.Payment{CustomerID: "borrower-2", LoanID: "loan-x"})

	c, rec := newAuthedContext(http.MethodGet, "/", nil, testCustomerID)
	require.NoError(t, handler.GetPayments(c))
	var payments []domain.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
	assert.Len(t, payments, 1)

	c, rec = newAuthedContext(http.MethodGet, "/", nil, testCustomerID)
	require.NoError(t, handler.GetUpcoming(c))
	var upcoming []domain.UpcomingPayment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, 2, upcoming[0].InstallmentNumber)
}
