package publish

import (
	"context"
	"fmt"

	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/notify"
)

// Publisher posts a wake-up message to the user's social channel.
type Publisher interface {
	// Tweet publishes the message.
	Tweet(ctx context.Context, message string) error
}

// Webhook publishes through a chat webhook channel.
type Webhook struct {
	channel *notify.Channel
}

// NewWebhook creates a publisher delivering to the provided channel.
func NewWebhook(channel *notify.Channel) *Webhook {
	return &Webhook{channel: channel}
}

// Tweet posts the message to the webhook.
func (w *Webhook) Tweet(ctx context.Context, message string) error {
	if err := w.channel.Send(ctx, message); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.InfoKV(ctx, "Message published", "message", message)

	return nil
}

// Noop is a Publisher that only logs, used when no webhook is configured.
type Noop struct{}

// Tweet logs the message instead of publishing it.
func (Noop) Tweet(ctx context.Context, message string) error {
	logger.InfoKV(ctx, "Publishing disabled, message dropped", "message", message)

	return nil
}
