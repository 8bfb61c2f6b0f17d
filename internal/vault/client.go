package vault

import (
	"context"
	"fmt"
	"sync"

	"expansion-monitor/config"

	"github.com/hashicorp/vault/api"
)

// Secrets represents the credentials kept in Vault
type Secrets struct {
	BinanceAPIKey string `json:"binance_api_key"`
	JWTSecret     string `json:"jwt_secret"`
	APIKeyHash    string `json:"api_key_hash"`
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config config.VaultConfig
	mu     sync.RWMutex
	cache  *Secrets
}

// NewClient creates a new Vault client. A disabled config yields an in-memory client.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// StoreSecrets writes the secrets to Vault
func (c *Client) StoreSecrets(ctx context.Context, s Secrets) error {
	if c.config.Enabled {
		secretData := map[string]interface{}{
			"data": map[string]interface{}{
				"binance_api_key": s.BinanceAPIKey,
				"jwt_secret":      s.JWTSecret,
				"api_key_hash":    s.APIKeyHash,
			},
		}

		if _, err := c.client.Logical().WriteWithContext(ctx, c.secretPath(), secretData); err != nil {
			return fmt.Errorf("failed to store secrets in vault: %w", err)
		}
	}

	c.mu.Lock()
	c.cache = &s
	c.mu.Unlock()
	return nil
}

// GetSecrets reads the secrets from Vault, serving from cache after the first read
func (c *Client) GetSecrets(ctx context.Context) (*Secrets, error) {
	c.mu.RLock()
	if c.cache != nil {
		cached := *c.cache
		c.mu.RUnlock()
		return &cached, nil
	}
	c.mu.RUnlock()

	if !c.config.Enabled {
		return nil, fmt.Errorf("secrets not found and vault is disabled")
	}

	secret, err := c.client.Logical().ReadWithContext(ctx, c.secretPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from vault: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secrets not found at %s", c.secretPath())
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format")
	}

	s := &Secrets{
		BinanceAPIKey: getString(data, "binance_api_key"),
		JWTSecret:     getString(data, "jwt_secret"),
		APIKeyHash:    getString(data, "api_key_hash"),
	}

	c.mu.Lock()
	c.cache = s
	c.mu.Unlock()

	out := *s
	return &out, nil
}

// Apply fills credentials left empty in cfg from Vault. Values already set win.
func (c *Client) Apply(ctx context.Context, cfg *config.Config) error {
	s, err := c.GetSecrets(ctx)
	if err != nil {
		return err
	}
	if cfg.BinanceConfig.APIKey == "" {
		cfg.BinanceConfig.APIKey = s.BinanceAPIKey
	}
	if cfg.AuthConfig.JWTSecret == "" {
		cfg.AuthConfig.JWTSecret = s.JWTSecret
	}
	if cfg.AuthConfig.APIKeyHash == "" {
		cfg.AuthConfig.APIKeyHash = s.APIKeyHash
	}
	return nil
}

// ClearCache clears the in-memory cache
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()
}

// IsEnabled returns whether Vault is enabled
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// Health checks the Vault connection
func (c *Client) Health(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}

	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}

	return nil
}

// secretPath returns the KV v2 data path
func (c *Client) secretPath() string {
	return fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
