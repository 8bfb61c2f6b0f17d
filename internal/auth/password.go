package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the default bcrypt cost factor
	DefaultBcryptCost = 12

	// MinAPIKeyLength is the minimum API key length
	MinAPIKeyLength = 16

	// MaxAPIKeyLength matches the bcrypt input limit
	MaxAPIKeyLength = 72
)

// HashAPIKey hashes a client API key using bcrypt
func HashAPIKey(apiKey string, cost int) (string, error) {
	if len(apiKey) < MinAPIKeyLength || len(apiKey) > MaxAPIKeyLength {
		return "", fmt.Errorf("api key must be %d-%d characters", MinAPIKeyLength, MaxAPIKeyLength)
	}
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(apiKey), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}

	return string(bytes), nil
}

// VerifyAPIKey verifies an API key against a bcrypt hash
func VerifyAPIKey(apiKey, hash string) bool {
	if hash == "" || len(apiKey) > MaxAPIKeyLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}
