package handler

import (
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileResponse represents the profile response
type ProfileResponse struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Status string  `json:"status"`
}

// UpdateProfileRequest represents the update profile request
type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
}

func toProfileResponse(customer *domain.Customer) ProfileResponse {
	return ProfileResponse{
		ID:     customer.ID,
		Email:  customer.Email,
		Name:   customer.Name,
		Phone:  customer.Phone,
		Status: customer.Status,
	}
}

// GetProfile handles GET /api/customers/:customerId
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	customer, err := h.profileService.GetProfile(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get profile")
	}
	return c.JSON(http.StatusOK, toProfileResponse(customer))
}

// UpdateProfile handles PUT /api/customers/:customerId
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.profileService.UpdateProfile(customerID, req.Name, req.Phone)
	switch err {
	case nil:
	case domain.ErrNameRequired:
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case domain.ErrNameTooLong:
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case domain.ErrInvalidInput:
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "phone", Message: "Phone must be 32 characters or less"},
		})
	default:
		return respondServiceError(c, err, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, toProfileResponse(customer))
}
