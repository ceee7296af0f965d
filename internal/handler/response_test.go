package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCustomerID = "borrower-1"

// Helper to build an echo context for an authenticated customer
func newAuthedContext(method, target string, body io.Reader, customerID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if customerID != "" {
		setupAuthContext(c, customerID)
	}
	return c, rec
}

func setupAuthContext(c echo.Context, customerID string) {
	ctx := context.WithValue(c.Request().Context(), middleware.CustomerIDKey, customerID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func withParams(c echo.Context, pairs ...string) {
	var names, values []string
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"loan not found", domain.ErrLoanNotFound, http.StatusNotFound, ErrorTypeNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrDocumentNotFound), http.StatusNotFound, ErrorTypeNotFound},
		{"override rejected", domain.ErrOverrideRejected, http.StatusUnprocessableEntity, ErrorTypeUnprocessable},
		{"invalid terms", domain.ErrInvalidLoanTerms, http.StatusUnprocessableEntity, ErrorTypeUnprocessable},
		{"invalid extra", domain.ErrInvalidExtraPayment, http.StatusBadRequest, ErrorTypeValidation},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, ErrorTypeForbidden},
		{"installment already paid", fmt.Errorf("rewrite loan: %w", domain.ErrInstallmentPaid), http.StatusConflict, ErrorTypeConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthedContext(http.MethodGet, "/api/customers/borrower-1", nil, testCustomerID)

			require.NoError(t, respondServiceError(c, tt.err, "Something failed"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/customers/borrower-1", problem.Instance)
		})
	}
}

func TestRespondServiceError_HidesInternalDetail(t *testing.T) {
	c, rec := newAuthedContext(http.MethodGet, "/api/customers/borrower-1", nil, testCustomerID)

	require.NoError(t, respondServiceError(c, errors.New("pq: password authentication failed"), "Failed to get loans"))

	problem := decodeProblem(t, rec)
	assert.Equal(t, "Failed to get loans", problem.Detail)
}
