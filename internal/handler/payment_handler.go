package handler

import (
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	Amount decimal.Decimal    `json:"amount"`
	Type   domain.PaymentType `json:"type"` // scheduled (default) or extra
}

// RecordPayment godoc
// @Summary Make a payment
// @Description Records a payment against a loan. A scheduled payment covering the upcoming installment marks it paid; extra payments reduce principal.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param loanId path string true "Loan ID"
// @Param request body RecordPaymentRequest true "Payment"
// @Success 201 {object} service.PaymentReceipt
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /customers/{customerId}/loans/{loanId}/payment [post]
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if !req.Amount.IsPositive() {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		})
	}

	receipt, err := h.paymentService.RecordPayment(c.Request().Context(), customerID, c.Param("loanId"), service.RecordPaymentInput{
		Amount: req.Amount,
		Type:   req.Type,
	})
	if err != nil {
		return respondServiceError(c, err, "Failed to record payment")
	}
	return c.JSON(http.StatusCreated, receipt)
}

// GetPayments handles GET /api/customers/:customerId/payments
func (h *PaymentHandler) GetPayments(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	payments, err := h.paymentService.List(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get payments")
	}
	return c.JSON(http.StatusOK, payments)
}

// GetPayment handles GET /api/customers/:customerId/payments/:paymentId
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	payment, err := h.paymentService.Get(customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to get payment")
	}
	return c.JSON(http.StatusOK, payment)
}

// GetUpcoming godoc
// @Summary Upcoming payments
// @Description Next installment due on each loan, soonest first, with urgency
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Success 200 {array} domain.UpcomingPayment
// @Router /customers/{customerId}/payments/upcoming [get]
func (h *PaymentHandler) GetUpcoming(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	upcoming, err := h.paymentService.Upcoming(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get upcoming payments")
	}
	return c.JSON(http.StatusOK, upcoming)
}
