package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// CognitoClaims contains the Cognito-specific claims of an ID token
type CognitoClaims struct {
	Username string `json:"cognito:username"`
	TokenUse string `json:"token_use"`
}

// Validate implements validator.CustomClaims
func (c CognitoClaims) Validate(ctx context.Context) error {
	if c.TokenUse != "" && c.TokenUse != "id" {
		return errors.New("token_use must be id")
	}
	return nil
}

// CognitoJWTValidator validates Cognito ID tokens for WebSocket connections.
// Browsers cannot set headers on the upgrade request, so the token arrives
// as a query parameter and is checked here instead of in middleware.
type CognitoJWTValidator struct {
	validator *validator.Validator
}

// NewCognitoJWTValidator creates a validator for tokens issued by issuer to clientID
func NewCognitoJWTValidator(issuer, clientID string) (*CognitoJWTValidator, error) {
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

	return &CognitoJWTValidator{validator: jwtValidator}, nil
}

// ValidateToken validates a JWT and returns the customer it identifies
func (v *CognitoJWTValidator) ValidateToken(token string) (customerID string, err error) {
	claims, err := v.validator.ValidateToken(context.Background(), token)
	if err != nil {
		return "", ErrInvalidToken
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	return CustomerIDFromClaims(validated), nil
}

// CustomerIDFromClaims picks the Cognito username, falling back to the subject
func CustomerIDFromClaims(claims *validator.ValidatedClaims) string {
	if custom, ok := claims.CustomClaims.(*CognitoClaims); ok && custom.Username != "" {
		return custom.Username
	}
	return claims.RegisteredClaims.Subject
}
