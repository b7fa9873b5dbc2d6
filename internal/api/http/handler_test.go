package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mapler/socialclock/internal/identity"
	"github.com/mapler/socialclock/internal/lifecycle"
	"github.com/mapler/socialclock/internal/metrics"
	"github.com/mapler/socialclock/internal/notify"
	"github.com/mapler/socialclock/internal/publish"
	"github.com/mapler/socialclock/internal/ringtone"
	"github.com/mapler/socialclock/internal/scheduler"
	"github.com/mapler/socialclock/internal/service/clock"
	"github.com/mapler/socialclock/internal/store"
)

// staticSettings is a Settings stub with a fixed 07:30 schedule.
type staticSettings struct{}

func (staticSettings) AlarmTime() (int, int)              { return 7, 30 }
func (staticSettings) SnoozeDuration() time.Duration      { return 10 * time.Minute }
func (staticSettings) IsWeekdayEnabled(time.Weekday) bool { return true }

// noopScheduler satisfies the scheduler without arming real timers.
type noopScheduler struct{}

func (noopScheduler) SetAlarm(context.Context, string, scheduler.Kind, time.Time) error {
	return nil
}

func (noopScheduler) CancelAlarm(context.Context) error { return nil }

// newTestServer builds a router over an in-memory service.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry := prometheus.NewRegistry()
	service := clock.NewService(
		staticSettings{},
		lifecycle.NewManager(store.NewMemory()),
		noopScheduler{},
		notify.Noop{},
		ringtone.NewSilent(),
		publish.Noop{},
		identity.NewStatic(identity.Identity{UserID: "u-1", UserName: "mapler"}),
		metrics.NewClock(registry),
	)

	server := httptest.NewServer(NewRouter(NewHandler(service), registry))
	t.Cleanup(server.Close)

	return server
}

// createAlarm posts to the create endpoint and returns the event id.
func createAlarm(t *testing.T, server *httptest.Server) string {
	t.Helper()

	resp, err := http.Post(server.URL+"/api/alarms", "application/json", nil)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		EventID string `json:"event_id"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.EventID)

	return body.EventID
}

// post issues an empty POST and returns the response.
func post(t *testing.T, url string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestAlarmLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	eventID := createAlarm(t, server)

	resp := post(t, server.URL+"/api/alarms/"+eventID+"/start")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = post(t, server.URL+"/api/alarms/"+eventID+"/snooze")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = post(t, server.URL+"/api/alarms/"+eventID+"/getup")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next struct {
		EventID string `json:"event_id"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&next))
	require.NotEmpty(t, next.EventID)
	require.NotEqual(t, eventID, next.EventID)

	resp = post(t, server.URL+"/api/alarms/"+eventID+"/sns")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestListEvents(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	// Empty history encodes as an empty array, not null.
	resp, err := http.Get(server.URL + "/api/events")
	require.NoError(t, err)

	var rawBody strings.Builder

	_, err = io.Copy(&rawBody, resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "[]", strings.TrimSpace(rawBody.String()))

	eventID := createAlarm(t, server)
	post(t, server.URL+"/api/alarms/"+eventID+"/start")
	post(t, server.URL+"/api/alarms/"+eventID+"/getup")

	doneID := createAlarm(t, server)
	post(t, server.URL+"/api/alarms/"+doneID+"/start")

	resp, err = http.Get(server.URL + "/api/events")
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all []struct {
		EventID  string `json:"event_id"`
		UserName string `json:"user_name"`
		Finished bool   `json:"finished"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)

	finishedResp, err := http.Get(server.URL + "/api/events/finished")
	require.NoError(t, err)

	defer finishedResp.Body.Close()

	var finished []struct {
		EventID  string `json:"event_id"`
		Finished bool   `json:"finished"`
	}

	require.NoError(t, json.NewDecoder(finishedResp.Body).Decode(&finished))
	require.Len(t, finished, 1)
	require.Equal(t, eventID, finished[0].EventID)
	require.True(t, finished[0].Finished)
}

func TestSendSnsUnknownEvent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	resp := post(t, server.URL+"/api/alarms/no-such-event/sns")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body.Error, "unknown alarm event")
}

func TestStartTwiceKeepsFirstRecord(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	eventID := createAlarm(t, server)

	resp := post(t, server.URL+"/api/alarms/"+eventID+"/start")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A duplicate firing is tolerated, not an error.
	resp = post(t, server.URL+"/api/alarms/"+eventID+"/start")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCancelAlarm(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	createAlarm(t, server)

	resp := post(t, server.URL+"/api/alarms/cancel")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)

	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)

	defer metricsResp.Body.Close()

	require.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
