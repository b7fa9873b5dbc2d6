// Package httpapi exposes the clock service over HTTP.
//
// The router serves the alarm actions under /api/alarms, the wake-up
// history under /api/events, plus /health and /metrics endpoints.
package httpapi
