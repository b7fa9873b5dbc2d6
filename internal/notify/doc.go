// Package notify presents alarm state to the user.
//
// The Webhook notifier posts ringing/snoozed messages to a chat webhook;
// Noop logs them for deployments without a webhook.
package notify
