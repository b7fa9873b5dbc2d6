// Package metrics exposes Prometheus instrumentation for the clock service.
package metrics
