package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/storage/storagetest"
)

// ARCADE_TEST_POSTGRES_DSN points at a disposable database; tables are
// truncated before each test.
const dsnEnv = "ARCADE_TEST_POSTGRES_DSN"

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			cfg := DefaultConfig()
			cfg.DSN = dsn
			store, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			_, err = store.DB().Exec(`TRUNCATE players, reward_balances, game_scores, handoff_tokens, sessions, user_achievements`)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	})
}

func TestRebind(t *testing.T) {
	got := Dialect{}.Rebind("SELECT a FROM t WHERE b = ? AND c = ? LIMIT ?")
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2 LIMIT $3", got)
}

func TestIsUniqueViolation(t *testing.T) {
	d := Dialect{}
	assert.True(t, d.IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, d.IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, d.IsUniqueViolation(errors.New("boom")))
}

func TestLockForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", Dialect{}.LockForUpdate())
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), DefaultConfig())
	assert.Error(t, err)
}
