package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation    = "https://mpwr.app/errors/validation"
	ErrorTypeUnprocessable = "https://mpwr.app/errors/unprocessable"
	ErrorTypeNotFound      = "https://mpwr.app/errors/not-found"
	ErrorTypeUnauthorized  = "https://mpwr.app/errors/unauthorized"
	ErrorTypeForbidden     = "https://mpwr.app/errors/forbidden"
	ErrorTypeConflict      = "https://mpwr.app/errors/conflict"
	ErrorTypeInternal      = "https://mpwr.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewUnprocessableError creates a response for well-formed requests the
// domain refuses, like out-of-range overrides or unusable loan terms
func NewUnprocessableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnprocessableEntity, ProblemDetails{
		Type:     ErrorTypeUnprocessable,
		Title:    "Unprocessable Entity",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

var notFoundErrors = []error{
	domain.ErrCustomerNotFound,
	domain.ErrLoanNotFound,
	domain.ErrInstallmentNotFound,
	domain.ErrDocumentNotFound,
	domain.ErrPaymentNotFound,
	domain.ErrNotificationNotFound,
	domain.ErrNotFound,
}

var unprocessableErrors = []error{
	domain.ErrInvalidLoanTerms,
	domain.ErrOverrideRejected,
	domain.ErrNothingDue,
	domain.ErrDocumentNotSignable,
	domain.ErrDocumentNotUploaded,
}

var validationErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidExtraPayment,
	domain.ErrInvalidPaymentAmount,
	domain.ErrInvalidDocumentType,
	domain.ErrUnsupportedFileType,
	domain.ErrFileTooLarge,
	domain.ErrInvalidSignature,
	domain.ErrNameRequired,
	domain.ErrNameTooLong,
}

// respondServiceError maps a domain error onto a problem response. Anything
// unrecognized is logged and hidden behind a 500 with fallback as detail.
func respondServiceError(c echo.Context, err error, fallback string) error {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return NewNotFoundError(c, err.Error())
		}
	}
	for _, target := range unprocessableErrors {
		if errors.Is(err, target) {
			return NewUnprocessableError(c, err.Error())
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return NewValidationError(c, err.Error(), nil)
		}
	}
	if errors.Is(err, domain.ErrForbidden) {
		return NewForbiddenError(c, err.Error())
	}
	if errors.Is(err, domain.ErrInstallmentPaid) {
		return NewConflictError(c, err.Error())
	}

	log.Error().
		Err(err).
		Str("customer_id", middleware.GetCustomerID(c)).
		Str("path", c.Request().URL.Path).
		Msg(fallback)
	return NewInternalError(c, fallback)
}
