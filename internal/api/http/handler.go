package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mapler/socialclock/internal/domain/event"
	"github.com/mapler/socialclock/internal/lifecycle"
	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/service/clock"
	"github.com/mapler/socialclock/internal/store"
)

// Handler routes HTTP requests to the clock service.
type Handler struct {
	service *clock.Service
}

// NewHandler creates a handler over the clock service.
func NewHandler(service *clock.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter builds the chi router with all API routes mounted.
// The metrics endpoint serves the provided gatherer.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/alarms", func(r chi.Router) {
			r.Post("/", h.createAlarm)
			r.Post("/cancel", h.cancelAlarm)
			r.Post("/{eventID}/start", h.startAlarm)
			r.Post("/{eventID}/snooze", h.snoozeAlarm)
			r.Post("/{eventID}/getup", h.getUp)
			r.Post("/{eventID}/sns", h.sendSns)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.listEvents)
			r.Get("/finished", h.listFinishedEvents)
		})
	})

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// eventResponse is the wire shape of an alarm event.
type eventResponse struct {
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	SnoozeTimes int        `json:"snooze_times"`
	Finished    bool       `json:"finished"`
}

// createAlarmResponse carries the id of a freshly armed alarm.
type createAlarmResponse struct {
	EventID string `json:"event_id"`
}

// errorResponse is the wire shape of an API error.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createAlarm(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.service.CreateAlarm(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusCreated, createAlarmResponse{EventID: eventID})
}

func (h *Handler) cancelAlarm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelAlarm(r.Context()); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startAlarm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.StartAlarm(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snoozeAlarm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SnoozeAlarm(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getUp(w http.ResponseWriter, r *http.Request) {
	nextID, err := h.service.GetUp(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, createAlarmResponse{EventID: nextID})
}

func (h *Handler) sendSns(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SendSns(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.AllEvents(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, toEventResponses(events))
}

func (h *Handler) listFinishedEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.FinishedEvents(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, toEventResponses(events))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// toEventResponses converts domain events to their wire shape.
// The result is never nil so empty histories encode as [].
func toEventResponses(events []*event.AlarmEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))

	for _, e := range events {
		out = append(out, eventResponse{
			EventID:     e.EventID,
			UserID:      e.UserID,
			UserName:    e.UserName,
			StartAt:     e.StartAt,
			EndAt:       e.EndAt,
			SnoozeTimes: e.SnoozeTimes,
			Finished:    e.IsFinished(),
		})
	}

	return out
}

// writeJSON encodes the payload with the provided status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WarnKV(r.Context(), "Response encoding failed", "error", err)
	}
}

// writeError maps service errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, clock.ErrUnknownEvent), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrAlreadyStarted), errors.Is(err, store.ErrDuplicateKey):
		status = http.StatusConflict
	case errors.Is(err, store.ErrQuerySyntax):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logger.ErrorKV(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	}

	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// requestLogger logs each request with its outcome status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.DebugKV(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
