package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/arcadebot/internal/api"
	"github.com/mcoot/arcadebot/internal/config"
	"github.com/mcoot/arcadebot/internal/factory"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/notify"
	redisstorage "github.com/mcoot/arcadebot/internal/storage/redis"
	"github.com/mcoot/arcadebot/internal/storage/sqlstore/postgres"
	"github.com/mcoot/arcadebot/internal/telegram"
	"github.com/mcoot/arcadebot/internal/telemetry"
)

const serviceName = "arcadebot"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The bot doubles as the notification sink, so it is created first
	var bot *tgbotapi.BotAPI
	var sink notify.Sink
	if cfg.TelegramEnabled() {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Error("failed to connect to telegram", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("telegram bot authorised", slog.String("username", bot.Self.UserName))
		sink = notify.NewTelegramSink(bot)
	} else {
		logger.Warn("ARCADE_TELEGRAM_TOKEN not set; chat front end disabled")
	}

	// Build factory config from environment
	factoryCfg := factory.Config{
		AuthConfig: auth.Config{
			TokenTTL:    cfg.HandoffTokenTTL,
			TokenLength: auth.DefaultConfig().TokenLength,
		},
		Logger:           logger,
		StorageType:      cfg.StorageType,
		SQLitePath:       cfg.SQLitePath,
		AchievementsFile: cfg.AchievementsFile,
		AdminSecret:      cfg.AdminSecret,
		Sink:             sink,
		NotifyTimeout:    cfg.NotifyTimeout,
	}
	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = cfg.PostgresDSN
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("application ready",
		slog.String("storage", cfg.StorageType),
		slog.Int("achievement_rules", app.Rules.Len()),
	)

	var workers sync.WaitGroup

	// Periodic token cleanup
	workers.Add(1)
	go func() {
		defer workers.Done()
		app.AuthService.RunSweeper(ctx, cfg.TokenSweepInterval)
	}()

	// Chat front end
	if bot != nil {
		handler := telegram.NewHandler(bot, app.PlayerService, app.AuthService, app.LeaderboardService, app.Rules,
			telegram.Config{WebAppURL: cfg.WebAppURL}, logger)
		poller := telegram.NewPoller(bot, handler, cfg.TelegramPollTimeout, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			poller.Run(ctx)
		}()
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		AdminTokens:        app.AdminTokens,
		PlayerService:      app.PlayerService,
		LedgerService:      app.LedgerService,
		LeaderboardService: app.LeaderboardService,
		Rules:              app.Rules,
		DefaultAvatarURL:   cfg.DefaultAvatarURL,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTPHost
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(apiRouter, serverConfig, logger)

	logger.Info("server starting", slog.String("addr", server.Addr()))

	exitCode := 0
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	}
	// Stops the sweeper and poller when the listener failed on its own.
	cancel()

	workers.Wait()
	if err := app.Close(); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("failed to flush traces", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
