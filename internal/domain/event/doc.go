// Package event contains core domain types for the alarm business logic.
//
// It defines AlarmEvent (one wake-up cycle: started, snoozed N times,
// finished) with Clone helpers to avoid leaking internal references and a
// Summary renderer used by the history view and the social publisher.
package event
