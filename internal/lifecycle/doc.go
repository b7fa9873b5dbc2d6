// Package lifecycle owns the alarm-event state machine:
//
//	uninitialized -> started -> (snooze)* -> finished
//
// An event id is minted before any record exists; the record is created when
// the alarm actually rings, mutated by snooze and finish, and never deleted
// by the normal flow. Mutations for the same event id are serialized by a
// per-id lock so concurrent alarm firings cannot interleave.
package lifecycle
