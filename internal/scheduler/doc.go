// Package scheduler arms and cancels wake-up alarms.
//
// The Timer implementation keeps a single pending alarm in process and
// invokes a callback when it fires, mirroring the replace-on-rearm behavior
// of a platform alarm manager.
package scheduler
