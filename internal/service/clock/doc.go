// Package clock sequences the user-facing alarm actions.
//
// The Service combines the lifecycle manager with the scheduler, notifier,
// ringtone player, publisher and identity collaborators: create arms the
// next wake-up, start rings it, snooze delays it, get-up finishes the cycle
// and arms tomorrow's alarm, and send-sns publishes the wake-up summary.
package clock
