package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"expansion-monitor/internal/analysis"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"
)

type Config struct {
	BinanceConfig      BinanceConfig      `json:"binance" yaml:"binance"`
	SignalConfig       SignalConfig       `json:"signal" yaml:"signal"`
	ScannerConfig      ScannerConfig      `json:"scanner" yaml:"scanner"`
	LoggingConfig      LoggingConfig      `json:"logging" yaml:"logging"`
	ServerConfig       ServerConfig       `json:"server" yaml:"server"`
	AuthConfig         AuthConfig         `json:"auth" yaml:"auth"`
	VaultConfig        VaultConfig        `json:"vault" yaml:"vault"`
	RedisConfig        RedisConfig        `json:"redis" yaml:"redis"`
	DatabaseConfig     DatabaseConfig     `json:"database" yaml:"database"`
	NotificationConfig NotificationConfig `json:"notification" yaml:"notification"`
	MetricsConfig      MetricsConfig      `json:"metrics" yaml:"metrics"`
}

type BinanceConfig struct {
	APIKey         string `json:"api_key" yaml:"api_key"`
	SecretKey      string `json:"secret_key" yaml:"secret_key"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	TestNet        bool   `json:"testnet" yaml:"testnet"`
	MockMode       bool   `json:"mock_mode" yaml:"mock_mode"`             // Use simulated candles instead of the exchange
	RequestTimeout int    `json:"request_timeout" yaml:"request_timeout"` // Seconds
	WeightPerMin   int    `json:"weight_per_min" yaml:"weight_per_min"`   // Request weight budget
}

// SignalConfig holds the classifier parameters
type SignalConfig struct {
	FastWindow          int      `json:"fast_window" yaml:"fast_window"`
	SlowWindow          int      `json:"slow_window" yaml:"slow_window"`
	RSIPeriod           int      `json:"rsi_period" yaml:"rsi_period"`
	ExpansionLookback   int      `json:"expansion_lookback" yaml:"expansion_lookback"`
	BodyLookback        int      `json:"body_lookback" yaml:"body_lookback"`
	ElephantMultiplier  float64  `json:"elephant_multiplier" yaml:"elephant_multiplier"`
	TailMultiplier      float64  `json:"tail_multiplier" yaml:"tail_multiplier"`
	VoidLongRSI         float64  `json:"void_long_rsi" yaml:"void_long_rsi"`
	VoidShortRSI        float64  `json:"void_short_rsi" yaml:"void_short_rsi"`
	BiasMode            string   `json:"bias_mode" yaml:"bias_mode"` // strict or loose
	ExecutionTimeframes []string `json:"execution_timeframes" yaml:"execution_timeframes"`
	BiasTimeframes      []string `json:"bias_timeframes" yaml:"bias_timeframes"` // first entry is the bias timeframe
	CandleLimit         int      `json:"candle_limit" yaml:"candle_limit"`       // Candles requested per timeframe
}

type ScannerConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	ScanInterval  int      `json:"scan_interval" yaml:"scan_interval"`   // Seconds between scans
	WorkerCount   int      `json:"worker_count" yaml:"worker_count"`     // Concurrent symbols
	SymbolTimeout int      `json:"symbol_timeout" yaml:"symbol_timeout"` // Seconds per symbol
	CacheTTL      int      `json:"cache_ttl" yaml:"cache_ttl"`           // Seconds, 0 = per-timeframe default
	Watchlist     []string `json:"watchlist" yaml:"watchlist"`
}

type LoggingConfig struct {
	Level       string `json:"level" yaml:"level"`               // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output" yaml:"output"`             // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format" yaml:"json_format"`   // Output as JSON
	IncludeFile bool   `json:"include_file" yaml:"include_file"` // Include file and line number
}

type ServerConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	Port            int    `json:"port" yaml:"port"`
	Host            string `json:"host" yaml:"host"`
	AllowedOrigins  string `json:"allowed_origins" yaml:"allowed_origins"` // CORS allowed origins, comma separated
	ReadTimeout     int    `json:"read_timeout" yaml:"read_timeout"`       // Seconds
	WriteTimeout    int    `json:"write_timeout" yaml:"write_timeout"`     // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	RateLimit       int    `json:"rate_limit" yaml:"rate_limit"` // Requests per minute per client and endpoint
}

type AuthConfig struct {
	Enabled             bool          `json:"enabled" yaml:"enabled"`
	JWTSecret           string        `json:"jwt_secret" yaml:"jwt_secret"`
	APIKeyHash          string        `json:"api_key_hash" yaml:"api_key_hash"` // bcrypt hash of the client API key
	AccessTokenDuration time.Duration `json:"access_token_duration" yaml:"access_token_duration"`
}

type VaultConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Address    string `json:"address" yaml:"address"`
	Token      string `json:"token" yaml:"token"`
	MountPath  string `json:"mount_path" yaml:"mount_path"`   // KV secrets engine mount path
	SecretPath string `json:"secret_path" yaml:"secret_path"` // Path holding binance/auth secrets
}

type RedisConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	PoolSize  int    `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

type DatabaseConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	URL      string `json:"url" yaml:"url"`
	MaxConns int    `json:"max_conns" yaml:"max_conns"`
	MinConns int    `json:"min_conns" yaml:"min_conns"`
}

type NotificationConfig struct {
	Enabled  bool           `json:"enabled" yaml:"enabled"`
	MinTier  string         `json:"min_tier" yaml:"min_tier"` // Lowest tier that triggers an alert
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Discord  DiscordConfig  `json:"discord" yaml:"discord"`
}

type TelegramConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BotToken string `json:"bot_token" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
}

type DiscordConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	engine := signals.DefaultConfig()
	return &Config{
		BinanceConfig: BinanceConfig{
			BaseURL:        "https://api.binance.com",
			RequestTimeout: 10,
			WeightPerMin:   1200,
		},
		SignalConfig: SignalConfig{
			FastWindow:          engine.FastWindow,
			SlowWindow:          engine.SlowWindow,
			RSIPeriod:           engine.RSIPeriod,
			ExpansionLookback:   engine.ExpansionLookback,
			BodyLookback:        engine.BodyLookback,
			ElephantMultiplier:  engine.ElephantMultiplier,
			TailMultiplier:      engine.TailMultiplier,
			VoidLongRSI:         engine.VoidLongRSI,
			VoidShortRSI:        engine.VoidShortRSI,
			BiasMode:            string(engine.BiasMode),
			ExecutionTimeframes: []string{"3m", "5m"},
			BiasTimeframes:      []string{"15m", "1h", "4h"},
			CandleLimit:         110,
		},
		ScannerConfig: ScannerConfig{
			Enabled:       true,
			ScanInterval:  60,
			WorkerCount:   4,
			SymbolTimeout: 20,
			Watchlist:     []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "XRP/USDT"},
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		ServerConfig: ServerConfig{
			Enabled:         true,
			Port:            8080,
			Host:            "0.0.0.0",
			AllowedOrigins:  "*",
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
			RateLimit:       60,
		},
		AuthConfig: AuthConfig{
			AccessTokenDuration: 15 * time.Minute,
		},
		VaultConfig: VaultConfig{
			Address:    "http://localhost:8200",
			MountPath:  "secret",
			SecretPath: "expansion-monitor",
		},
		RedisConfig: RedisConfig{
			Address:   "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "candles:",
		},
		DatabaseConfig: DatabaseConfig{
			MaxConns: 10,
			MinConns: 2,
		},
		NotificationConfig: NotificationConfig{
			MinTier: string(signals.TierA),
		},
		MetricsConfig: MetricsConfig{
			Enabled:   true,
			Namespace: "expansion_monitor",
		},
	}
}

// Load reads .env, then config.json or config.yaml (or CONFIG_FILE), then environment overrides
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.BinanceConfig.APIKey = getEnvOrDefault("BINANCE_API_KEY", cfg.BinanceConfig.APIKey)
	cfg.BinanceConfig.SecretKey = getEnvOrDefault("BINANCE_SECRET_KEY", cfg.BinanceConfig.SecretKey)
	cfg.BinanceConfig.BaseURL = getEnvOrDefault("BINANCE_BASE_URL", cfg.BinanceConfig.BaseURL)
	cfg.BinanceConfig.TestNet = getEnvBoolOrDefault("BINANCE_TESTNET", cfg.BinanceConfig.TestNet)
	cfg.BinanceConfig.MockMode = getEnvBoolOrDefault("MOCK_MODE", cfg.BinanceConfig.MockMode)
	cfg.BinanceConfig.RequestTimeout = getEnvIntOrDefault("BINANCE_REQUEST_TIMEOUT", cfg.BinanceConfig.RequestTimeout)

	cfg.SignalConfig.FastWindow = getEnvIntOrDefault("SIGNAL_FAST_WINDOW", cfg.SignalConfig.FastWindow)
	cfg.SignalConfig.SlowWindow = getEnvIntOrDefault("SIGNAL_SLOW_WINDOW", cfg.SignalConfig.SlowWindow)
	cfg.SignalConfig.RSIPeriod = getEnvIntOrDefault("SIGNAL_RSI_PERIOD", cfg.SignalConfig.RSIPeriod)
	cfg.SignalConfig.ExpansionLookback = getEnvIntOrDefault("SIGNAL_EXPANSION_LOOKBACK", cfg.SignalConfig.ExpansionLookback)
	cfg.SignalConfig.ElephantMultiplier = getEnvFloatOrDefault("SIGNAL_ELEPHANT_MULTIPLIER", cfg.SignalConfig.ElephantMultiplier)
	cfg.SignalConfig.TailMultiplier = getEnvFloatOrDefault("SIGNAL_TAIL_MULTIPLIER", cfg.SignalConfig.TailMultiplier)
	cfg.SignalConfig.VoidLongRSI = getEnvFloatOrDefault("SIGNAL_VOID_LONG_RSI", cfg.SignalConfig.VoidLongRSI)
	cfg.SignalConfig.VoidShortRSI = getEnvFloatOrDefault("SIGNAL_VOID_SHORT_RSI", cfg.SignalConfig.VoidShortRSI)
	cfg.SignalConfig.BiasMode = getEnvOrDefault("SIGNAL_BIAS_MODE", cfg.SignalConfig.BiasMode)
	cfg.SignalConfig.ExecutionTimeframes = getEnvListOrDefault("SIGNAL_EXECUTION_TIMEFRAMES", cfg.SignalConfig.ExecutionTimeframes)
	cfg.SignalConfig.BiasTimeframes = getEnvListOrDefault("SIGNAL_BIAS_TIMEFRAMES", cfg.SignalConfig.BiasTimeframes)
	cfg.SignalConfig.CandleLimit = getEnvIntOrDefault("SIGNAL_CANDLE_LIMIT", cfg.SignalConfig.CandleLimit)

	cfg.ScannerConfig.Enabled = getEnvBoolOrDefault("SCANNER_ENABLED", cfg.ScannerConfig.Enabled)
	cfg.ScannerConfig.ScanInterval = getEnvIntOrDefault("SCANNER_INTERVAL", cfg.ScannerConfig.ScanInterval)
	cfg.ScannerConfig.WorkerCount = getEnvIntOrDefault("SCANNER_WORKERS", cfg.ScannerConfig.WorkerCount)
	cfg.ScannerConfig.SymbolTimeout = getEnvIntOrDefault("SCANNER_SYMBOL_TIMEOUT", cfg.ScannerConfig.SymbolTimeout)
	cfg.ScannerConfig.CacheTTL = getEnvIntOrDefault("SCANNER_CACHE_TTL", cfg.ScannerConfig.CacheTTL)
	cfg.ScannerConfig.Watchlist = getEnvListOrDefault("WATCHLIST", cfg.ScannerConfig.Watchlist)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	cfg.LoggingConfig.JSONFormat = getEnvBoolOrDefault("LOG_JSON", cfg.LoggingConfig.JSONFormat)
	cfg.LoggingConfig.IncludeFile = getEnvBoolOrDefault("LOG_INCLUDE_FILE", cfg.LoggingConfig.IncludeFile)

	cfg.ServerConfig.Enabled = getEnvBoolOrDefault("WEB_ENABLED", cfg.ServerConfig.Enabled)
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", cfg.ServerConfig.AllowedOrigins)
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", cfg.ServerConfig.ReadTimeout)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", cfg.ServerConfig.WriteTimeout)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", cfg.ServerConfig.ShutdownTimeout)
	cfg.ServerConfig.RateLimit = getEnvIntOrDefault("SERVER_RATE_LIMIT", cfg.ServerConfig.RateLimit)

	cfg.AuthConfig.Enabled = getEnvBoolOrDefault("AUTH_ENABLED", cfg.AuthConfig.Enabled)
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.APIKeyHash = getEnvOrDefault("AUTH_API_KEY_HASH", cfg.AuthConfig.APIKeyHash)
	cfg.AuthConfig.AccessTokenDuration = getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_DURATION", cfg.AuthConfig.AccessTokenDuration)

	cfg.VaultConfig.Enabled = getEnvBoolOrDefault("VAULT_ENABLED", cfg.VaultConfig.Enabled)
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", cfg.VaultConfig.Address)
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", cfg.VaultConfig.MountPath)
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", cfg.VaultConfig.SecretPath)

	cfg.RedisConfig.Enabled = getEnvBoolOrDefault("REDIS_ENABLED", cfg.RedisConfig.Enabled)
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDR", cfg.RedisConfig.Address)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", cfg.RedisConfig.PoolSize)

	cfg.DatabaseConfig.Enabled = getEnvBoolOrDefault("DATABASE_ENABLED", cfg.DatabaseConfig.Enabled)
	cfg.DatabaseConfig.URL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseConfig.URL)
	cfg.DatabaseConfig.MaxConns = getEnvIntOrDefault("DATABASE_MAX_CONNS", cfg.DatabaseConfig.MaxConns)
	cfg.DatabaseConfig.MinConns = getEnvIntOrDefault("DATABASE_MIN_CONNS", cfg.DatabaseConfig.MinConns)

	cfg.NotificationConfig.Enabled = getEnvBoolOrDefault("NOTIFICATIONS_ENABLED", cfg.NotificationConfig.Enabled)
	cfg.NotificationConfig.MinTier = getEnvOrDefault("NOTIFICATIONS_MIN_TIER", cfg.NotificationConfig.MinTier)
	cfg.NotificationConfig.Telegram.Enabled = getEnvBoolOrDefault("TELEGRAM_ENABLED", cfg.NotificationConfig.Telegram.Enabled)
	cfg.NotificationConfig.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", cfg.NotificationConfig.Telegram.BotToken)
	cfg.NotificationConfig.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", cfg.NotificationConfig.Telegram.ChatID)
	cfg.NotificationConfig.Discord.Enabled = getEnvBoolOrDefault("DISCORD_ENABLED", cfg.NotificationConfig.Discord.Enabled)
	cfg.NotificationConfig.Discord.WebhookURL = getEnvOrDefault("DISCORD_WEBHOOK_URL", cfg.NotificationConfig.Discord.WebhookURL)

	cfg.MetricsConfig.Enabled = getEnvBoolOrDefault("METRICS_ENABLED", cfg.MetricsConfig.Enabled)
	cfg.MetricsConfig.Namespace = getEnvOrDefault("METRICS_NAMESPACE", cfg.MetricsConfig.Namespace)
}

// Validate checks the sections that must be usable before anything starts
func (c *Config) Validate() error {
	if _, err := c.SignalConfig.ToEngineConfig(); err != nil {
		return err
	}
	if c.SignalConfig.CandleLimit <= 0 {
		return fmt.Errorf("%w: candle_limit must be positive", signals.ErrInvalidConfiguration)
	}
	if len(c.ScannerConfig.Watchlist) == 0 {
		return fmt.Errorf("%w: watchlist is empty", signals.ErrInvalidConfiguration)
	}
	if c.ScannerConfig.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", signals.ErrInvalidConfiguration)
	}
	if c.ScannerConfig.ScanInterval <= 0 {
		return fmt.Errorf("%w: scan_interval must be positive", signals.ErrInvalidConfiguration)
	}
	if _, ok := signals.ParseTier(c.NotificationConfig.MinTier); !ok {
		return fmt.Errorf("%w: unknown notification min_tier %q", signals.ErrInvalidConfiguration, c.NotificationConfig.MinTier)
	}
	if c.AuthConfig.Enabled && c.AuthConfig.JWTSecret == "" && !c.VaultConfig.Enabled {
		return fmt.Errorf("%w: auth enabled without a jwt_secret", signals.ErrInvalidConfiguration)
	}
	if c.DatabaseConfig.Enabled && c.DatabaseConfig.URL == "" {
		return fmt.Errorf("%w: database enabled without a url", signals.ErrInvalidConfiguration)
	}
	return nil
}

// ToEngineConfig converts the file representation into the classifier configuration
func (s SignalConfig) ToEngineConfig() (signals.Config, error) {
	exec, err := market.ParseTimeframes(strings.Join(s.ExecutionTimeframes, ","))
	if err != nil {
		return signals.Config{}, fmt.Errorf("%w: execution_timeframes: %v", signals.ErrInvalidConfiguration, err)
	}
	bias, err := market.ParseTimeframes(strings.Join(s.BiasTimeframes, ","))
	if err != nil {
		return signals.Config{}, fmt.Errorf("%w: bias_timeframes: %v", signals.ErrInvalidConfiguration, err)
	}
	mode, err := analysis.ParseBiasMode(s.BiasMode)
	if err != nil {
		return signals.Config{}, fmt.Errorf("%w: %v", signals.ErrInvalidConfiguration, err)
	}

	cfg := signals.Config{
		FastWindow:          s.FastWindow,
		SlowWindow:          s.SlowWindow,
		RSIPeriod:           s.RSIPeriod,
		ExpansionLookback:   s.ExpansionLookback,
		BodyLookback:        s.BodyLookback,
		ElephantMultiplier:  s.ElephantMultiplier,
		TailMultiplier:      s.TailMultiplier,
		VoidLongRSI:         s.VoidLongRSI,
		VoidShortRSI:        s.VoidShortRSI,
		BiasMode:            mode,
		ExecutionTimeframes: exec,
		BiasTimeframes:      bias,
	}
	if err := cfg.Validate(); err != nil {
		return signals.Config{}, err
	}
	return cfg, nil
}

// NormalizedWatchlist returns the watchlist in exchange symbol form
func (s ScannerConfig) NormalizedWatchlist() []string {
	out := make([]string, 0, len(s.Watchlist))
	for _, sym := range s.Watchlist {
		if n := market.NormalizeSymbol(sym); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Addr returns host:port for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func loadFromFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config %s: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GenerateSampleConfig writes the default configuration to filename as JSON or YAML
func GenerateSampleConfig(filename string) error {
	cfg := Default()

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
