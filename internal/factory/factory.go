package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/dependencies/random"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
	"github.com/mcoot/arcadebot/internal/services/ledger"
	"github.com/mcoot/arcadebot/internal/services/notify"
	"github.com/mcoot/arcadebot/internal/services/player"
	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/storage/memory"
	redisstorage "github.com/mcoot/arcadebot/internal/storage/redis"
	"github.com/mcoot/arcadebot/internal/storage/sqlstore/postgres"
	"github.com/mcoot/arcadebot/internal/storage/sqlstore/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Static configuration
	Rules *achievement.Rules

	// Services
	AuthService        *auth.Service
	AdminTokens        *auth.AdminTokens
	PlayerService      *player.Service
	LedgerService      *ledger.Service
	LeaderboardService *leaderboard.Service
	Notifier           *notify.Dispatcher

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// PostgresConfig holds connection settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// AchievementsFile overrides the built-in rule set (optional)
	AchievementsFile string
	// AdminSecret signs admin tokens (optional; admin routes are disabled without it)
	AdminSecret string
	// Sink delivers achievement notifications (optional)
	// If nil, notifications are only logged
	Sink notify.Sink
	// NotifyTimeout bounds one notification delivery (optional)
	NotifyTimeout time.Duration
}

// services is the storage-independent part of the wiring
type services struct {
	authCfg       auth.Config
	rules         *achievement.Rules
	sink          notify.Sink
	adminSecret   string
	notifyTimeout time.Duration
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	rules, err := achievement.Load(cfg.AchievementsFile)
	if err != nil {
		return nil, err
	}

	store, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.TokenTTL == 0 {
		authCfg = auth.DefaultConfig()
	}

	sink := cfg.Sink
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}

	app := newWithDependencies(store, clock.New(), random.New(), services{
		authCfg:       authCfg,
		rules:         rules,
		sink:          sink,
		adminSecret:   cfg.AdminSecret,
		notifyTimeout: cfg.NotifyTimeout,
	}, logger)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, io.Closer, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case StorageTypeSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		store, err := postgres.Open(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, errors.New("invalid StorageType: must be 'memory', 'redis', 'sqlite' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, svc services, logger *slog.Logger) *App {
	rules := svc.rules
	if rules == nil {
		rules = achievement.DefaultRules()
	}

	authService := auth.New(store, clk, rnd, svc.authCfg, logger)
	notifier := notify.NewDispatcher(svc.sink, svc.notifyTimeout, logger)
	ledgerService := ledger.New(store, authService, rules, notifier, clk, logger)
	leaderboardService := leaderboard.New(store, authService)
	playerService := player.New(store, clk, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Rules:              rules,
		AuthService:        authService,
		AdminTokens:        auth.NewAdminTokens(svc.adminSecret, clk),
		PlayerService:      playerService,
		LedgerService:      ledgerService,
		LeaderboardService: leaderboardService,
		Notifier:           notifier,
	}
}

// Close waits for pending notifications and releases the storage backend
func (a *App) Close() error {
	a.Notifier.Wait()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
