package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arcadebot/internal/api"
	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/factory"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/testutil"
)

type cliEnv struct {
	app         *factory.TestApp
	server      *httptest.Server
	sessionFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	app := factory.NewTestApp()
	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		AuthService:        app.AuthService,
		AdminTokens:        app.AdminTokens,
		PlayerService:      app.PlayerService,
		LedgerService:      app.LedgerService,
		LeaderboardService: app.LeaderboardService,
		Rules:              app.Rules,
	}))
	t.Cleanup(server.Close)

	sessionFile := filepath.Join(t.TempDir(), "session")
	t.Setenv("ARCADECTL_SERVER", server.URL)
	t.Setenv("ARCADECTL_SESSION_FILE", sessionFile)
	t.Setenv("ARCADECTL_SESSION", "")
	t.Setenv("ARCADECTL_ADMIN_TOKEN", "")

	return &cliEnv{app: app, server: server, sessionFile: sessionFile}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestVerifySubmitAndStats(t *testing.T) {
	env := newCLIEnv(t)
	ctx := t.Context()

	_, err := env.app.PlayerService.Register(ctx, 42, "Ada")
	require.NoError(t, err)
	tok, err := env.app.AuthService.Issue(ctx, 42)
	require.NoError(t, err)

	out, err := env.run(t, "auth", "verify", tok.Token)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ada")

	saved, err := os.ReadFile(env.sessionFile)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(saved)))

	out, err = env.run(t, "score", "submit", "--game", "1", "--score", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Earned 100 coins and 500 xp")
	assert.Contains(t, out, "Unlocked: Tile Apprentice")

	out, err = env.run(t, "user")
	require.NoError(t, err)
	assert.Contains(t, out, "Player: Ada (42)")
	assert.Contains(t, out, "Achievements: 2048_1000")

	out, err = env.run(t, "stats", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 1000`)
}

func TestCommandsNeedSession(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session")
}

func TestAPIErrorsSurface(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "auth", "verify", "bogus")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "invalid", apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Contains(t, err.Error(), apiErr.RequestID)
}

func TestAdminCommands(t *testing.T) {
	env := newCLIEnv(t)
	ctx := t.Context()

	_, err := env.app.PlayerService.Register(ctx, 9, "Eve")
	require.NoError(t, err)
	_, err = env.app.AuthService.Issue(ctx, 9)
	require.NoError(t, err)
	env.app.MockClock.Advance(time.Hour)

	// The server verifies with its mock clock, so mint with the app's tokens
	token, err := env.app.AdminTokens.Mint("test", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	out, err := env.run(t, "--admin-token", token, "admin", "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 expired tokens")

	out, err = env.run(t, "--admin-token", token, "admin", "reset", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Player 9 reset")

	_, err = env.run(t, "admin", "sweep")
	assert.Error(t, err)
}

func TestAdminTokenMintsLocally(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "admin", "token", "--secret", "s3cret", "--subject", "ops", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := auth.NewAdminTokens("s3cret", clock.New()).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestHealthAndCatalogue(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok")

	out, err = env.run(t, "achievements")
	require.NoError(t, err)
	assert.Contains(t, out, "2048_1000")
	assert.Contains(t, out, "tetris_10000")
}
