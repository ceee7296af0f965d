package handler

import (
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary godoc
// @Summary Dashboard summary
// @Description Loan progress, soonest upcoming payment, documents needing action and unread count
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Success 200 {object} domain.DashboardSummary
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /customers/{customerId}/dashboard [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.dashboardService.GetSummary(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}
