package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mapler/socialclock/internal/logger"
)

// Notifier presents the ringing/snoozed state to the user.
type Notifier interface {
	// CreateAlarmNotification shows the "ringing" notification.
	CreateAlarmNotification(ctx context.Context, eventID string, at time.Time) error
	// CreateSnoozeNotification shows the "snoozed until" notification.
	CreateSnoozeNotification(ctx context.Context, eventID string, at time.Time) error
	// CancelAllNotifications withdraws anything currently shown. Best effort.
	CancelAllNotifications(ctx context.Context) error
}

// Webhook delivers notifications to a chat webhook and tracks what is
// currently shown so cancellation can be reported.
type Webhook struct {
	channel *Channel

	// mu guards the active notification slot.
	mu     sync.Mutex
	active string
}

// NewWebhook creates a notifier delivering to the provided channel.
func NewWebhook(channel *Channel) *Webhook {
	return &Webhook{channel: channel}
}

// CreateAlarmNotification posts the ringing message.
func (w *Webhook) CreateAlarmNotification(ctx context.Context, eventID string, at time.Time) error {
	return w.post(ctx, eventID, fmt.Sprintf("Alarm ringing since %s", at.Format(time.Kitchen)))
}

// CreateSnoozeNotification posts the snoozed-until message.
func (w *Webhook) CreateSnoozeNotification(ctx context.Context, eventID string, at time.Time) error {
	return w.post(ctx, eventID, fmt.Sprintf("Snoozed until %s", at.Format(time.Kitchen)))
}

// CancelAllNotifications clears the active slot and reports the withdrawal.
func (w *Webhook) CancelAllNotifications(ctx context.Context) error {
	w.mu.Lock()
	active := w.active
	w.active = ""
	w.mu.Unlock()

	if active == "" {
		return nil
	}

	logger.DebugKV(ctx, "Notification withdrawn", "event_id", active)

	return nil
}

// post sends the message and records the active notification.
func (w *Webhook) post(ctx context.Context, eventID, content string) error {
	if err := w.channel.Send(ctx, content); err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	w.mu.Lock()
	w.active = eventID
	w.mu.Unlock()

	return nil
}

// Noop is a Notifier that only logs, used when no webhook is configured.
type Noop struct{}

// CreateAlarmNotification logs the ringing notification.
func (Noop) CreateAlarmNotification(ctx context.Context, eventID string, at time.Time) error {
	logger.InfoKV(ctx, "Alarm notification", "event_id", eventID, "at", at)

	return nil
}

// CreateSnoozeNotification logs the snooze notification.
func (Noop) CreateSnoozeNotification(ctx context.Context, eventID string, at time.Time) error {
	logger.InfoKV(ctx, "Snooze notification", "event_id", eventID, "at", at)

	return nil
}

// CancelAllNotifications is a no-op.
func (Noop) CancelAllNotifications(context.Context) error {
	return nil
}
