package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"expansion-monitor/config"
	"expansion-monitor/internal/api"
	"expansion-monitor/internal/auth"
	"expansion-monitor/internal/binance"
	"expansion-monitor/internal/cache"
	"expansion-monitor/internal/database"
	"expansion-monitor/internal/events"
	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/metrics"
	"expansion-monitor/internal/notification"
	"expansion-monitor/internal/scanner"
	"expansion-monitor/internal/signals"
	"expansion-monitor/internal/vault"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(&logging.Config{
		Level:       cfg.LoggingConfig.Level,
		Output:      cfg.LoggingConfig.Output,
		JSONFormat:  cfg.LoggingConfig.JSONFormat,
		IncludeFile: cfg.LoggingConfig.IncludeFile,
		Component:   "main",
	})
	logging.SetDefault(logger)
	logger.Info("Structured logging initialized")

	ctx := context.Background()

	// Pull credentials from Vault before anything uses them
	if cfg.VaultConfig.Enabled {
		vaultClient, err := vault.NewClient(cfg.VaultConfig)
		if err != nil {
			logger.Fatal("Failed to create vault client", "error", err.Error())
		}
		if err := vaultClient.Health(ctx); err != nil {
			logger.Fatal("Vault is not usable", "error", err.Error())
		}
		if err := vaultClient.Apply(ctx, cfg); err != nil {
			logger.Fatal("Failed to read secrets from vault", "error", err.Error())
		}
		logger.Info("Secrets loaded from vault", "path", cfg.VaultConfig.SecretPath)
	}

	engineCfg, err := cfg.SignalConfig.ToEngineConfig()
	if err != nil {
		logger.Fatal("Invalid signal configuration", "error", err.Error())
	}
	engine, err := signals.NewEngine(engineCfg)
	if err != nil {
		logger.Fatal("Failed to create signal engine", "error", err.Error())
	}

	// Market data: exchange (or simulator) behind an in-memory and optional redis tier
	exchange := binance.NewProvider(binance.NewKlineSource(cfg.BinanceConfig), cfg.SignalConfig.CandleLimit)
	tiers := []market.Cache{market.NewMemoryCache()}

	var cacheService *cache.CacheService
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig)
		if err != nil {
			logger.Fatal("Failed to create redis cache", "error", err.Error())
		}
		defer cacheService.Close()
		tiers = append(tiers, cache.NewCandleCache(cacheService))
	}
	provider := market.NewCachedProvider(exchange, tiers...).
		WithTTL(time.Duration(cfg.ScannerConfig.CacheTTL) * time.Second)

	evaluator := signals.NewEvaluator(provider, engine, cfg.SignalConfig.CandleLimit)
	logger.Info("Signal engine initialized",
		"execution", market.JoinTimeframes(engineCfg.ExecutionTimeframes),
		"bias", market.JoinTimeframes(engineCfg.BiasTimeframes),
		"bias_mode", string(engineCfg.BiasMode))

	// Initialize event bus
	eventBus := events.NewEventBus()

	// Initialize the signal scanner
	signalScanner := scanner.NewScanner(evaluator, scanner.ScannerConfig{
		Enabled:       cfg.ScannerConfig.Enabled,
		ScanInterval:  time.Duration(cfg.ScannerConfig.ScanInterval) * time.Second,
		WorkerCount:   cfg.ScannerConfig.WorkerCount,
		SymbolTimeout: time.Duration(cfg.ScannerConfig.SymbolTimeout) * time.Second,
		Symbols:       cfg.ScannerConfig.NormalizedWatchlist(),
	}).WithEvents(eventBus)

	var m *metrics.Metrics
	if cfg.MetricsConfig.Enabled {
		m = metrics.New(cfg.MetricsConfig.Namespace)
		signalScanner.WithObserver(m)
	}

	// Initialize database journal
	var repo *database.Repository
	if cfg.DatabaseConfig.Enabled {
		db, err := database.NewDB(ctx, cfg.DatabaseConfig)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err.Error())
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			logger.Fatal("Failed to run migrations", "error", err.Error())
		}
		repo = database.NewRepository(db)
		signalScanner.WithRecorder(repo)
		logger.Info("Signal journal enabled")
	}

	// Initialize notification manager
	if cfg.NotificationConfig.Enabled {
		minTier, _ := signals.ParseTier(cfg.NotificationConfig.MinTier)
		notifyManager := notification.NewManager(minTier)

		if cfg.NotificationConfig.Telegram.Enabled {
			notifyManager.AddNotifier(notification.NewTelegramNotifier(notification.TelegramConfig{
				BotToken: cfg.NotificationConfig.Telegram.BotToken,
				ChatID:   cfg.NotificationConfig.Telegram.ChatID,
				Enabled:  true,
			}))
			logger.Info("Telegram notifications enabled")
		}
		if cfg.NotificationConfig.Discord.Enabled {
			notifyManager.AddNotifier(notification.NewDiscordNotifier(notification.DiscordConfig{
				WebhookURL: cfg.NotificationConfig.Discord.WebhookURL,
				Enabled:    true,
			}))
			logger.Info("Discord notifications enabled")
		}
		if m != nil {
			notifyManager.OnFailure(func(notifier string, _ error) {
				m.NotifyFailures.WithLabelValues(notifier).Inc()
			})
		}
		signalScanner.WithAlerter(notifyManager)
	}

	// Initialize web server
	var server *api.Server
	if cfg.ServerConfig.Enabled {
		deps := api.Dependencies{
			Scanner:   signalScanner,
			Evaluator: evaluator,
			Provider:  provider,
			EventBus:  eventBus,
		}
		if repo != nil {
			deps.History = repo
		}
		if m != nil {
			deps.Metrics = m.Handler()
		}
		if cfg.AuthConfig.Enabled {
			deps.Auth = auth.NewService(auth.Config{
				JWTSecret:           cfg.AuthConfig.JWTSecret,
				APIKeyHash:          cfg.AuthConfig.APIKeyHash,
				AccessTokenDuration: cfg.AuthConfig.AccessTokenDuration,
			})
		}

		server = api.NewServer(api.ServerConfig{
			Port:           cfg.ServerConfig.Port,
			Host:           cfg.ServerConfig.Host,
			ProductionMode: true,
			AllowedOrigins: splitOrigins(cfg.ServerConfig.AllowedOrigins),
			RateLimit:      cfg.ServerConfig.RateLimit,
			ReadTimeout:    time.Duration(cfg.ServerConfig.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.ServerConfig.WriteTimeout) * time.Second,
		}, deps)

		go func() {
			if err := server.Start(); err != nil {
				logger.Fatal("Failed to start web server", "error", err.Error())
			}
		}()
	}

	signalScanner.Start()
	logger.Info("Expansion monitor running", "symbols", len(signalScanner.Symbols()), "addr", cfg.ServerConfig.Addr())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down web server")
		}
	}
	signalScanner.Stop()

	logger.Info("Shutdown complete")
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
