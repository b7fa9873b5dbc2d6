// Package identity supplies the social account recorded on alarm events.
//
// Providers expose a login/logout/current-identity capability: Static keeps
// the session in memory, Redis persists it so logins survive restarts. Both
// fall back to a configured (possibly anonymous) identity.
package identity
