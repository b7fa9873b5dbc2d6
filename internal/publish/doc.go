// Package publish posts wake-up summaries to the user's social channel.
package publish
