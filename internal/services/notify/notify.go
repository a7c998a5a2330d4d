// Package notify delivers best-effort chat notifications.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/arcadebot/internal/model"
)

// Sink delivers a text message to a player's chat
type Sink interface {
	Notify(ctx context.Context, playerID model.PlayerID, text string) error
}

// DefaultTimeout bounds a single delivery attempt
const DefaultTimeout = 10 * time.Second

// Dispatcher hands notifications to a Sink off the caller's goroutine.
// Delivery is attempted once; failures are logged and dropped.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A non-positive timeout uses DefaultTimeout.
func NewDispatcher(sink Sink, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sink: sink, timeout: timeout, logger: logger}
}

// AchievementUnlocked announces a newly unlocked rule to its player
func (d *Dispatcher) AchievementUnlocked(ctx context.Context, playerID model.PlayerID, rule model.AchievementRule) {
	d.dispatch(ctx, playerID, FormatAchievement(rule), slog.String("achievement_id", string(rule.ID)))
}

func (d *Dispatcher) dispatch(ctx context.Context, playerID model.PlayerID, text string, attrs ...any) {
	// Delivery must outlive the request that triggered it
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := d.sink.Notify(ctx, playerID, text); err != nil {
			d.logger.Warn("notification failed",
				append([]any{
					slog.String("player_id", playerID.String()),
					slog.String("error", err.Error()),
				}, attrs...)...,
			)
		}
	}()
}

// Wait blocks until every in-flight delivery has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// FormatAchievement renders the HTML chat message for an unlock
func FormatAchievement(rule model.AchievementRule) string {
	return fmt.Sprintf("🎉 <b>New achievement!</b>\n\n🏆 <b>%s</b>\n📝 %s",
		html.EscapeString(rule.Name),
		html.EscapeString(rule.Description),
	)
}

// LogSink writes notifications to the log. Used when no chat bot is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, playerID model.PlayerID, text string) error {
	s.logger.Info("notification",
		slog.String("player_id", playerID.String()),
		slog.String("text", text),
	)
	return nil
}
