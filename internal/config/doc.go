// Package config defines clock server settings and provides helpers to
// load, validate and save them in YAML format.
//
// Settings cover the HTTP listen address, the event store and identity
// backends, the notification/publishing webhooks and the wake-up schedule.
// Environment variables with the CLOCK_ prefix override file values.
package config
