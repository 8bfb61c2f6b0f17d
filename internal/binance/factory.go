package binance

import (
	"time"

	"expansion-monitor/config"
	"expansion-monitor/internal/logging"
)

const testnetBaseURL = "https://testnet.binance.vision"

// NewKlineSource picks the simulated or the live client from configuration
func NewKlineSource(cfg config.BinanceConfig) KlineSource {
	log := logging.WithComponent("binance")

	if cfg.MockMode {
		log.Info("Using simulated market data")
		return NewMockClient()
	}

	baseURL := cfg.BaseURL
	if cfg.TestNet {
		baseURL = testnetBaseURL
	}

	log.Info("Using Binance market data", "base_url", baseURL, "weight_per_min", cfg.WeightPerMin)
	return NewClient(
		cfg.APIKey,
		baseURL,
		time.Duration(cfg.RequestTimeout)*time.Second,
		NewRateLimiter(cfg.WeightPerMin),
	)
}
