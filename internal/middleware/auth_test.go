package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	claims interface{}
	err    error
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return f.claims, f.err
}

type fakeCustomers struct {
	known map[string]bool
}

func (f *fakeCustomers) GetByID(id string) (*domain.Customer, error) {
	if f.known[id] {
		return &domain.Customer{ID: id}, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func claimsFor(sub, username string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: sub},
		CustomClaims:     &CognitoClaims{Username: username, Email: "b@example.com", TokenUse: "id"},
	}
}

func runAuth(t *testing.T, m *AuthMiddleware, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/customers/cust-1/loans", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := m.Authenticate()(func(c echo.Context) error {
		seen = GetCustomerID(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seen
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{}, nil)

	rec, _ := runAuth(t, m, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuthenticate_BadScheme(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{}, nil)

	rec, _ := runAuth(t, m, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{err: errors.New("expired")}, nil)

	rec, _ := runAuth(t, m, "Bearer token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthenticate_SetsCustomerFromUsername(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: claimsFor("sub-1", "cust-1")}, nil)

	rec, seen := runAuth(t, m, "Bearer token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1", seen)
}

func TestAuthenticate_FallsBackToSubject(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: claimsFor("sub-1", "")}, nil)

	_, seen := runAuth(t, m, "Bearer token")
	assert.Equal(t, "sub-1", seen)
}

func TestAuthenticate_UnknownCustomer(t *testing.T) {
	customers := &fakeCustomers{known: map[string]bool{"cust-2": true}}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: claimsFor("sub-1", "cust-1")}, customers)

	rec, _ := runAuth(t, m, "Bearer token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer not found")
}

func TestRequireCustomerMatch(t *testing.T) {
	tests := []struct {
		name     string
		authed   string
		param    string
		expected int
	}{
		{"own data", "cust-1", "cust-1", http.StatusOK},
		{"someone else's data", "cust-1", "cust-2", http.StatusForbidden},
		{"not authenticated", "", "cust-1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("customerId")
			c.SetParamValues(tt.param)
			if tt.authed != "" {
				ctx := context.WithValue(c.Request().Context(), CustomerIDKey, tt.authed)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			handler := RequireCustomerMatch()(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, handler(c))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestGetCognitoClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns claims when present", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claimsFor("sub", "cust-1"))
		c.SetRequest(c.Request().WithContext(ctx))

		claims := GetCognitoClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, "b@example.com", claims.Email)
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.Nil(t, GetCognitoClaims(c))
		assert.Empty(t, GetCustomerID(c))
	})
}

func TestCognitoClaims_Validate(t *testing.T) {
	assert.NoError(t, CognitoClaims{TokenUse: "id"}.Validate(context.Background()))
	assert.Error(t, CognitoClaims{TokenUse: "access"}.Validate(context.Background()))
}
