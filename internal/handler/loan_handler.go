package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/dafibh/mpwr/portal-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan, schedule and override HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// StageOverrideRequest represents the stage override request body
type StageOverrideRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *string         `json:"date,omitempty"` // YYYY-MM-DD
}

// GetLoans godoc
// @Summary List loans
// @Description Get all loans of the customer, normalized from servicing records
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Success 200 {array} domain.Loan
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /customers/{customerId}/loans [get]
func (h *LoanHandler) GetLoans(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	loans, err := h.loanService.ListLoans(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get loans")
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan handles GET /api/customers/:customerId/loans/:loanId
func (h *LoanHandler) GetLoan(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	loan, err := h.loanService.GetLoan(customerID, c.Param("loanId"))
	if err != nil {
		return respondServiceError(c, err, "Failed to get loan")
	}
	return c.JSON(http.StatusOK, loan)
}

// GetSchedule godoc
// @Summary Get repayment schedule
// @Description Reconciled schedule with staged overrides applied, plus summary counts
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param loanId path string true "Loan ID"
// @Success 200 {object} service.LoanSchedule
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /customers/{customerId}/loans/{loanId}/schedule [get]
func (h *LoanHandler) GetSchedule(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	schedule, err := h.loanService.GetSchedule(c.Request().Context(), customerID, c.Param("loanId"))
	if err != nil {
		return respondServiceError(c, err, "Failed to build schedule")
	}
	return c.JSON(http.StatusOK, schedule)
}

// GetProjection godoc
// @Summary Project payoff with extra payment
// @Description Compares paying the minimum plus extra each month against the minimum alone
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param loanId path string true "Loan ID"
// @Param extra query string false "Extra monthly payment" default(0)
// @Success 200 {object} domain.Projection
// @Failure 400 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /customers/{customerId}/loans/{loanId}/projection [get]
func (h *LoanHandler) GetProjection(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	extra := decimal.Zero
	if raw := c.QueryParam("extra"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return NewValidationError(c, "Invalid extra payment", []ValidationError{
				{Field: "extra", Message: "Must be a decimal number"},
			})
		}
		extra = parsed
	}

	projection, err := h.loanService.Project(c.Request().Context(), customerID, c.Param("loanId"), extra)
	if err != nil {
		return respondServiceError(c, err, "Failed to project payoff")
	}
	return c.JSON(http.StatusOK, projection)
}

// StageOverride godoc
// @Summary Stage an installment override
// @Description Stages a payment amount (and optionally date) for one unpaid installment. Amounts must be within 0.5x to 3x of the minimum payment.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param loanId path string true "Loan ID"
// @Param number path int true "Installment number (1-based)"
// @Param request body StageOverrideRequest true "Override"
// @Success 200 {object} service.LoanSchedule
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /customers/{customerId}/loans/{loanId}/schedule/overrides/{number} [put]
func (h *LoanHandler) StageOverride(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		return NewValidationError(c, "Invalid installment number", nil)
	}

	var req StageOverrideRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := util.ParseDate(*req.Date)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Must be YYYY-MM-DD"},
			})
		}
		date = &parsed
	}

	schedule, err := h.loanService.StageOverride(c.Request().Context(), customerID, c.Param("loanId"), number, req.Amount, date)
	if err != nil {
		return respondServiceError(c, err, "Failed to stage override")
	}
	return c.JSON(http.StatusOK, schedule)
}

// ClearOverride handles DELETE /api/customers/:customerId/loans/:loanId/schedule/overrides/:number
func (h *LoanHandler) ClearOverride(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		return NewValidationError(c, "Invalid installment number", nil)
	}

	schedule, err := h.loanService.ClearOverride(customerID, c.Param("loanId"), number)
	if err != nil {
		return respondServiceError(c, err, "Failed to clear override")
	}
	return c.JSON(http.StatusOK, schedule)
}

// ResetOverrides handles DELETE /api/customers/:customerId/loans/:loanId/schedule/overrides
func (h *LoanHandler) ResetOverrides(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	schedule, err := h.loanService.ResetOverrides(customerID, c.Param("loanId"))
	if err != nil {
		return respondServiceError(c, err, "Failed to reset overrides")
	}
	return c.JSON(http.StatusOK, schedule)
}
