package auth

import (
	"time"
)

// ClientClaims identifies the API client a token was issued to
type ClientClaims struct {
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes,omitempty"`
}

// HasScope reports whether the client was granted scope
func (c ClientClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Scopes granted to API tokens
const (
	ScopeRead = "signals:read"
	ScopeScan = "signals:scan"
)

// TokenRequest exchanges an API key for an access token
type TokenRequest struct {
	APIKey   string `json:"api_key" binding:"required"`
	ClientID string `json:"client_id"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // Access token expiry in seconds
	TokenType   string `json:"token_type"` // Always "Bearer"
}

// Config holds authentication configuration
type Config struct {
	JWTSecret           string        `json:"jwt_secret"`
	APIKeyHash          string        `json:"api_key_hash"`
	AccessTokenDuration time.Duration `json:"access_token_duration"`
}

// DefaultConfig returns default authentication configuration
func DefaultConfig() Config {
	return Config{
		JWTSecret:           "", // Must be set
		AccessTokenDuration: 15 * time.Minute,
	}
}

// Error types for authentication
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e AuthError) Error() string {
	return e.Message
}

// Common authentication errors
var (
	ErrInvalidCredentials = AuthError{Code: "INVALID_CREDENTIALS", Message: "invalid api key"}
	ErrInvalidToken       = AuthError{Code: "INVALID_TOKEN", Message: "invalid or expired token"}
	ErrTokenExpired       = AuthError{Code: "TOKEN_EXPIRED", Message: "token has expired"}
	ErrUnauthorized       = AuthError{Code: "UNAUTHORIZED", Message: "unauthorized access"}
	ErrForbidden          = AuthError{Code: "FORBIDDEN", Message: "access forbidden"}
	ErrNotConfigured      = AuthError{Code: "AUTH_NOT_CONFIGURED", Message: "authentication is not configured"}
)
