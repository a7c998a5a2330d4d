// Package postgres opens a PostgreSQL-backed sqlstore using lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/lib/pq"

	"github.com/mcoot/arcadebot/internal/storage/sqlstore"
	"github.com/mcoot/arcadebot/internal/storage/sqlstore/postgres/migrations"
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// Dialect is the PostgreSQL flavour of sqlstore.Dialect
type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) Rebind(query string) string { return sqlstore.RebindDollar(query) }

func (Dialect) LockForUpdate() string { return " FOR UPDATE" }

func (Dialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

func (Dialect) Migrations() fs.FS { return migrations.FS }

// Config holds pool settings for the Postgres backend
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// DefaultConfig returns sensible pool defaults
func DefaultConfig() Config {
	return Config{
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
}

// Open connects to the database and applies the embedded migrations
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if err := sqlstore.Migrate(ctx, db, Dialect{}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlstore.New(db, Dialect{}), nil
}
