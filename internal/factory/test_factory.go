package factory

import (
	"time"

	"github.com/mcoot/arcadebot/internal/dependencies/mocks"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/storage/memory"
	"github.com/mcoot/arcadebot/internal/testutil"
)

// TestAdminSecret is the admin signing secret used by NewTestApp
const TestAdminSecret = "test-admin-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockSink   *mocks.MockSink
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockSink := mocks.NewMockSink()

	app := newWithDependencies(store, mockClock, mockRandom, services{
		authCfg:     auth.DefaultConfig(),
		rules:       achievement.DefaultRules(),
		sink:        mockSink,
		adminSecret: TestAdminSecret,
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockSink:   mockSink,
	}
}
