package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expansion-monitor/internal/logging"
)

const defaultClientID = "api-client"

// Service exchanges API keys for short-lived access tokens
type Service struct {
	jwt        *JWTManager
	apiKeyHash string
	log        *logging.Logger
}

// NewService creates an auth service. An empty secret or key hash leaves it unconfigured.
func NewService(cfg Config) *Service {
	return &Service{
		jwt:        NewJWTManager(cfg.JWTSecret, cfg.AccessTokenDuration),
		apiKeyHash: cfg.APIKeyHash,
		log:        logging.WithComponent("auth"),
	}
}

// Configured reports whether tokens can be issued and validated
func (s *Service) Configured() bool {
	return len(s.jwt.secret) > 0 && s.apiKeyHash != ""
}

// JWT returns the token manager used for validation
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// IssueToken verifies the API key and signs an access token for the client
func (s *Service) IssueToken(req TokenRequest) (*TokenResponse, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if !VerifyAPIKey(req.APIKey, s.apiKeyHash) {
		return nil, ErrInvalidCredentials
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}

	token, err := s.jwt.GenerateAccessToken(ClientClaims{
		ClientID: clientID,
		Scopes:   []string{ScopeRead, ScopeScan},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Access token issued", "client_id", clientID)
	return &TokenResponse{
		AccessToken: token,
		ExpiresIn:   s.jwt.GetAccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}

// TokenHandler handles token issuance
// POST /api/auth/token
func (s *Service) TokenHandler(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	resp, err := s.IssueToken(req)
	if err != nil {
		if authErr, ok := err.(AuthError); ok {
			status := http.StatusUnauthorized
			if authErr.Code == ErrNotConfigured.Code {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{
				"error":   authErr.Code,
				"message": authErr.Message,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "INTERNAL_ERROR",
			"message": "failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
