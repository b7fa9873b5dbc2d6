package clock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapler/socialclock/internal/domain/event"
	"github.com/mapler/socialclock/internal/identity"
	"github.com/mapler/socialclock/internal/lifecycle"
	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/metrics"
	"github.com/mapler/socialclock/internal/notify"
	"github.com/mapler/socialclock/internal/publish"
	"github.com/mapler/socialclock/internal/ringtone"
	"github.com/mapler/socialclock/internal/scheduler"
)

// Settings supplies the wake-up schedule preferences.
type Settings interface {
	// AlarmTime returns the configured wake-up hour (0-23) and minute (0-59).
	AlarmTime() (hour, minute int)
	// SnoozeDuration returns the delay applied by a snooze.
	SnoozeDuration() time.Duration
	// IsWeekdayEnabled reports whether the alarm fires on the given weekday.
	IsWeekdayEnabled(day time.Weekday) bool
}

// ErrUnknownEvent is returned when an operation references an event id with
// no record, in contexts where silence is not an option.
var ErrUnknownEvent = errors.New("unknown alarm event")

// Service sequences the user-facing alarm actions: create, start, snooze,
// cancel, get up and publish. It owns no persistent state of its own; all
// event mutation goes through the lifecycle manager.
type Service struct {
	settings  Settings
	events    *lifecycle.Manager
	alarms    scheduler.Scheduler
	notifier  notify.Notifier
	player    ringtone.Player
	publisher publish.Publisher
	identity  identity.Provider
	metrics   *metrics.Clock

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewService wires the orchestrator with its collaborators.
func NewService(
	settings Settings,
	events *lifecycle.Manager,
	alarms scheduler.Scheduler,
	notifier notify.Notifier,
	player ringtone.Player,
	publisher publish.Publisher,
	identityProvider identity.Provider,
	clockMetrics *metrics.Clock,
) *Service {
	return &Service{
		settings:  settings,
		events:    events,
		alarms:    alarms,
		notifier:  notifier,
		player:    player,
		publisher: publisher,
		identity:  identityProvider,
		metrics:   clockMetrics,
		now:       time.Now,
	}
}

// CreateAlarm arms the next wake-up alarm and returns its event id.
// The trigger is today at the configured time, rolled to the next day when
// already past, then to the next enabled weekday. Scheduler failures are
// surfaced; no event record exists until the alarm actually rings.
func (s *Service) CreateAlarm(ctx context.Context) (string, error) {
	alarmAt := s.nextTriggerTime(s.now())
	eventID := s.events.InitAlarmEvent()

	if err := s.alarms.SetAlarm(ctx, eventID, scheduler.KindNormal, alarmAt); err != nil {
		return "", fmt.Errorf("arm alarm: %w", err)
	}

	if err := s.notifier.CancelAllNotifications(ctx); err != nil {
		logger.WarnKV(ctx, "Cancel notifications failed", "error", err)
	}

	s.metrics.AlarmsCreated.Inc()

	logger.InfoKV(ctx, "Alarm created", "event_id", eventID, "alarm_at", alarmAt)

	return eventID, nil
}

// StartAlarm handles an alarm firing: it creates the event record on first
// delivery, shows the ringing notification and starts the ringtone.
// A second delivery for the same id leaves the existing record untouched.
func (s *Service) StartAlarm(ctx context.Context, eventID string) error {
	if err := s.notifier.CancelAllNotifications(ctx); err != nil {
		logger.WarnKV(ctx, "Cancel notifications failed", "error", err)
	}

	existing, err := s.events.GetAlarmEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	startAt := s.now()

	if existing == nil {
		who, err := s.identity.CurrentIdentity(ctx)
		if err != nil {
			return fmt.Errorf("resolve identity: %w", err)
		}

		_, err = s.events.StartAlarmEvent(ctx, eventID, who.UserID, who.UserName, startAt)

		switch {
		case errors.Is(err, lifecycle.ErrAlreadyStarted):
			// Lost a race with a duplicate firing; the record exists now.
		case err != nil:
			return err
		default:
			s.metrics.AlarmsStarted.Inc()
		}
	}

	if err := s.notifier.CreateAlarmNotification(ctx, eventID, startAt); err != nil {
		logger.WarnKV(ctx, "Alarm notification failed", "error", err)
	}

	if err := s.player.PlayRingtone(ctx); err != nil {
		logger.WarnKV(ctx, "Ringtone playback failed", "error", err)
	}

	return nil
}

// SnoozeAlarm delays an active alarm: the event's snooze counter goes up
// and a snooze re-trigger is armed. An absent or finished event returns
// without side effects.
func (s *Service) SnoozeAlarm(ctx context.Context, eventID string) error {
	if err := s.notifier.CancelAllNotifications(ctx); err != nil {
		logger.WarnKV(ctx, "Cancel notifications failed", "error", err)
	}

	s.player.StopRingtone(ctx)

	existing, err := s.events.GetAlarmEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if existing == nil || existing.IsFinished() {
		return nil
	}

	if err := s.events.SnoozeAlarmEvent(ctx, eventID); err != nil {
		return err
	}

	// Seconds are zeroed so the re-trigger lands on a whole minute.
	snoozeAt := s.now().Add(s.settings.SnoozeDuration()).Truncate(time.Minute)

	if err := s.alarms.SetAlarm(ctx, eventID, scheduler.KindSnooze, snoozeAt); err != nil {
		return fmt.Errorf("arm snooze alarm: %w", err)
	}

	if err := s.notifier.CreateSnoozeNotification(ctx, eventID, snoozeAt); err != nil {
		logger.WarnKV(ctx, "Snooze notification failed", "error", err)
	}

	s.metrics.AlarmsSnoozed.Inc()

	logger.InfoKV(ctx, "Alarm snoozed", "event_id", eventID, "snooze_at", snoozeAt)

	return nil
}

// CancelAlarm disarms the pending alarm, stops the ringtone and withdraws
// notifications. The event record, if any, stays as it is: a cancel before
// the alarm ever fires has no event to mutate.
func (s *Service) CancelAlarm(ctx context.Context) error {
	if err := s.alarms.CancelAlarm(ctx); err != nil {
		return fmt.Errorf("cancel alarm: %w", err)
	}

	s.player.StopRingtone(ctx)

	if err := s.notifier.CancelAllNotifications(ctx); err != nil {
		logger.WarnKV(ctx, "Cancel notifications failed", "error", err)
	}

	logger.Info(ctx, "Alarm canceled")

	return nil
}

// GetUp finishes the event and immediately arms tomorrow's alarm,
// returning the new event id.
func (s *Service) GetUp(ctx context.Context, eventID string) (string, error) {
	if err := s.notifier.CancelAllNotifications(ctx); err != nil {
		logger.WarnKV(ctx, "Cancel notifications failed", "error", err)
	}

	s.player.StopRingtone(ctx)

	if err := s.events.FinishAlarmEvent(ctx, eventID); err != nil {
		return "", err
	}

	s.metrics.AlarmsFinished.Inc()

	logger.InfoKV(ctx, "User got up", "event_id", eventID)

	return s.CreateAlarm(ctx)
}

// SendSns publishes the wake-up summary of the event.
func (s *Service) SendSns(ctx context.Context, eventID string) error {
	e, err := s.events.GetAlarmEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}

	if err := s.publisher.Tweet(ctx, e.Summary()); err != nil {
		return err
	}

	s.metrics.MessagesPublished.Inc()

	return nil
}

// AllEvents returns the full wake-up history, newest first.
func (s *Service) AllEvents(ctx context.Context) ([]*event.AlarmEvent, error) {
	return s.events.GetAllAlarmEvents(ctx)
}

// FinishedEvents returns only completed wake cycles, newest first.
func (s *Service) FinishedEvents(ctx context.Context) ([]*event.AlarmEvent, error) {
	return s.events.FinishedAlarmEvents(ctx)
}

// nextTriggerTime computes the next wake-up trigger from the settings.
func (s *Service) nextTriggerTime(now time.Time) time.Time {
	hour, minute := s.settings.AlarmTime()

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(candidate) {
		// Today's time has passed; start from tomorrow.
		candidate = candidate.AddDate(0, 0, 1)
	}

	first := candidate

	for range 7 {
		if s.settings.IsWeekdayEnabled(candidate.Weekday()) {
			return candidate
		}

		candidate = candidate.AddDate(0, 0, 1)
	}

	// No weekday enabled: fall back to the earliest candidate.
	return first
}
