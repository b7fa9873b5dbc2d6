// Package server assembles and runs the clock-server process: it loads
// configuration, picks the event store and identity backend, wires the
// orchestrator with its collaborators and serves the HTTP API until the
// context is canceled.
package server
