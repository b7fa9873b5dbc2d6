package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStatic_FallbackAndLoginCycle verifies the login/logout capability.
func TestStatic_FallbackAndLoginCycle(t *testing.T) {
	t.Parallel()

	fallback := Identity{UserID: "anonymous", UserName: "anonymous"}
	p := NewStatic(fallback)
	ctx := context.Background()

	got, err := p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, fallback, got)

	logged := Identity{UserID: "u-1", UserName: "mapler"}
	require.NoError(t, p.Login(ctx, logged))

	got, err = p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, logged, got)

	require.NoError(t, p.Logout(ctx))

	got, err = p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, fallback, got)
}
