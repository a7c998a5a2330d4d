package telegram

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long-polling half of tgbotapi.BotAPI
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller feeds updates to a Handler, one goroutine per update
type Poller struct {
	source  UpdateSource
	handler *Handler
	timeout int
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewPoller creates a Poller with a long-poll timeout in seconds
func NewPoller(source UpdateSource, handler *Handler, timeout int, logger *slog.Logger) *Poller {
	return &Poller{source: source, handler: handler, timeout: timeout, logger: logger}
}

// Run polls until ctx is cancelled, then waits for in-flight updates
func (p *Poller) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.source.GetUpdatesChan(cfg)

	p.logger.Info("telegram polling started")
	defer func() {
		p.source.StopReceivingUpdates()
		p.wg.Wait()
		p.logger.Info("telegram polling stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				// errors are logged by the handler
				_ = p.handler.Handle(ctx, update)
			}()
		}
	}
}
