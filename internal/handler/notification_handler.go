package handler

import (
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles inbox HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// GetNotifications handles GET /api/customers/:customerId/notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	list, err := h.notificationService.List(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get notifications")
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead handles POST /api/customers/:customerId/notifications/:notificationId/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		return NewValidationError(c, "Invalid notification ID", nil)
	}

	n, err := h.notificationService.MarkRead(customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to mark notification read")
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAllRead handles POST /api/customers/:customerId/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	updated, err := h.notificationService.MarkAllRead(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to mark notifications read")
	}
	return c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}
