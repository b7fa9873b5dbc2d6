package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/store"
)

const metricPrefix = "socialclock_"

// Clock counts lifecycle transitions and tracks unfinished wake cycles.
type Clock struct {
	// AlarmsCreated counts alarms armed by CreateAlarm.
	AlarmsCreated prometheus.Counter
	// AlarmsStarted counts alarm events that began ringing.
	AlarmsStarted prometheus.Counter
	// AlarmsSnoozed counts snooze transitions.
	AlarmsSnoozed prometheus.Counter
	// AlarmsFinished counts get-up transitions.
	AlarmsFinished prometheus.Counter
	// MessagesPublished counts wake-up messages handed to the publisher.
	MessagesPublished prometheus.Counter
}

// NewClock creates and registers the clock metrics on the registerer.
func NewClock(reg prometheus.Registerer) *Clock {
	m := &Clock{
		AlarmsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "alarms_created_total",
			Help: "Alarms armed for a future wake-up",
		}),
		AlarmsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "alarms_started_total",
			Help: "Alarm events that began ringing",
		}),
		AlarmsSnoozed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "alarms_snoozed_total",
			Help: "Snooze transitions",
		}),
		AlarmsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "alarms_finished_total",
			Help: "Get-up transitions",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "messages_published_total",
			Help: "Wake-up messages handed to the publisher",
		}),
	}

	reg.MustRegister(
		m.AlarmsCreated,
		m.AlarmsStarted,
		m.AlarmsSnoozed,
		m.AlarmsFinished,
		m.MessagesPublished,
	)

	return m
}

// RegisterUnfinishedGauge exposes the number of unfinished alarm events
// sourced from the store at scrape time.
func RegisterUnfinishedGauge(reg prometheus.Registerer, s store.Store) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "unfinished_events",
			Help: "Alarm events that have not reached the finished state",
		},
		func() float64 {
			return countUnfinished(s)
		},
	))
}

// countUnfinished queries the store, returning zero on failure so a broken
// store never breaks a scrape.
func countUnfinished(s store.Store) float64 {
	ctx := context.Background()

	events, err := s.FilterBy(ctx, store.Filter{
		Conditions: []store.Condition{{Field: store.FieldEndAt, Op: store.OpIsNull}},
	}, store.Order{})
	if err != nil {
		logger.WarnKV(ctx, "Unfinished-events metric query failed", "error", err)

		return 0
	}

	return float64(len(events))
}
