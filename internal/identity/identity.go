package identity

import (
	"context"
	"sync"
)

// Identity is the social account snapshot recorded on alarm events.
type Identity struct {
	// UserID identifies the social account, or the anonymous sentinel.
	UserID string `json:"user_id"`
	// UserName is the display name.
	UserName string `json:"user_name"`
}

// Provider supplies the active identity to the orchestrator. Login and
// logout are capability hooks for the surrounding application; the core
// only needs CurrentIdentity at alarm-start time.
type Provider interface {
	// Login records the provided identity as active.
	Login(ctx context.Context, id Identity) error
	// Logout clears the active identity.
	Logout(ctx context.Context) error
	// CurrentIdentity returns the active identity, falling back to the
	// configured default when nobody is logged in.
	CurrentIdentity(ctx context.Context) (Identity, error)
}

// Static keeps the active identity in memory with a configured fallback.
type Static struct {
	fallback Identity

	mu      sync.RWMutex
	current *Identity
}

// NewStatic creates a provider that answers with the fallback identity
// until someone logs in.
func NewStatic(fallback Identity) *Static {
	return &Static{fallback: fallback}
}

// Login records the provided identity as active.
func (s *Static) Login(_ context.Context, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &id

	return nil
}

// Logout clears the active identity.
func (s *Static) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	return nil
}

// CurrentIdentity returns the active identity or the fallback.
func (s *Static) CurrentIdentity(context.Context) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current != nil {
		return *s.current, nil
	}

	return s.fallback, nil
}
