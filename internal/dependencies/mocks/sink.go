package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/arcadebot/internal/model"
)

// SentNotification is one message accepted by MockSink
type SentNotification struct {
	PlayerID model.PlayerID
	Text     string
}

// MockSink records notifications instead of delivering them
type MockSink struct {
	mu   sync.Mutex
	sent []SentNotification

	// Err, when set, is returned from every Notify call
	Err error
}

// NewMockSink creates an empty MockSink
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Notify records the message
func (m *MockSink) Notify(ctx context.Context, playerID model.PlayerID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentNotification{PlayerID: playerID, Text: text})
	return nil
}

// Sent returns a copy of everything recorded so far
func (m *MockSink) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}
