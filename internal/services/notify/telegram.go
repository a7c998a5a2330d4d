package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/arcadebot/internal/model"
)

// Sender is the part of tgbotapi.BotAPI used to deliver messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends notifications as HTML chat messages. The chat id of a
// private chat equals the user id.
type TelegramSink struct {
	sender Sender
}

// NewTelegramSink creates a TelegramSink
func NewTelegramSink(sender Sender) *TelegramSink {
	return &TelegramSink{sender: sender}
}

// Notify sends text to the player's private chat. tgbotapi.Send takes no
// context, so Notify returns when ctx is done even if the request is still
// in flight; the send then finishes or fails under the bot's HTTP client
// timeout, which is left alone because long polling shares that client.
func (s *TelegramSink) Notify(ctx context.Context, playerID model.PlayerID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(int64(playerID), text)
	msg.ParseMode = tgbotapi.ModeHTML

	done := make(chan error, 1)
	go func() {
		_, err := s.sender.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
