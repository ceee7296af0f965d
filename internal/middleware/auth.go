package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CognitoClaims contains the Cognito-specific claims of an ID token
type CognitoClaims struct {
	Email    string `json:"email"`
	Username string `json:"cognito:username"`
	TokenUse string `json:"token_use"`
}

// Validate implements validator.CustomClaims. Only ID tokens carry the
// client ID in aud, so access tokens are refused.
func (c CognitoClaims) Validate(ctx context.Context) error {
	if c.TokenUse != "" && c.TokenUse != "id" {
		return errors.New("token_use must be id")
	}
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// CustomerIDKey is the context key for the authenticated borrower
	CustomerIDKey contextKey = "customer_id"
)

// CustomerProvider confirms the authenticated borrower has a portal account
type CustomerProvider interface {
	GetByID(id string) (*domain.Customer, error)
}

// TokenValidator validates a raw JWT. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator TokenValidator
	customers CustomerProvider
}

// NewAuthMiddleware creates a new AuthMiddleware for a Cognito user pool
func NewAuthMiddleware(issuer, clientID string, customers CustomerProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{clientID},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CognitoClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator, customers), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around an existing validator
func NewAuthMiddlewareWithValidator(v TokenValidator, customers CustomerProvider) *AuthMiddleware {
	return &AuthMiddleware{validator: v, customers: customers}
}

// Authenticate returns an Echo middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			customerID := customerIDFromClaims(validatedClaims)
			if customerID == "" {
				return unauthorizedError(c, "token does not identify a customer")
			}

			if m.customers != nil {
				if _, err := m.customers.GetByID(customerID); err != nil {
					log.Debug().Err(err).Str("customer_id", customerID).Msg("Customer lookup failed")
					return unauthorizedError(c, "customer not found")
				}
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, CustomerIDKey, customerID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireCustomerMatch rejects requests whose :customerId path parameter is
// not the authenticated borrower. It must run after Authenticate.
func RequireCustomerMatch() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			customerID := GetCustomerID(c)
			if customerID == "" {
				return unauthorizedError(c, "not authenticated")
			}
			if param := c.Param("customerId"); param != customerID {
				log.Warn().
					Str("customer_id", customerID).
					Str("requested", param).
					Msg("Cross-customer access denied")
				return forbiddenError(c, "access to another customer's data is not allowed")
			}
			return next(c)
		}
	}
}

func customerIDFromClaims(claims *validator.ValidatedClaims) string {
	if custom, ok := claims.CustomClaims.(*CognitoClaims); ok && custom.Username != "" {
		return custom.Username
	}
	return claims.RegisteredClaims.Subject
}

// GetCustomerID extracts the authenticated customer ID from the context
func GetCustomerID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(CustomerIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCognitoClaims extracts the Cognito claims from the context
func GetCognitoClaims(c echo.Context) *CognitoClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CognitoClaims); ok {
		return custom
	}
	return nil
}
