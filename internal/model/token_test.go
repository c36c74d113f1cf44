package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionTokenLive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	base := SessionToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		UserID:       "u-1",
		ExpiresAt:    now.Add(time.Hour),
	}

	t.Run("live before expiry", func(t *testing.T) {
		require.True(t, base.Live(now))
	})

	t.Run("dead when revoked", func(t *testing.T) {
		revoked := base
		revoked.Revoked = true
		require.False(t, revoked.Live(now))
	})

	t.Run("dead exactly at expiry", func(t *testing.T) {
		require.False(t, base.Live(base.ExpiresAt))
	})

	t.Run("dead after expiry", func(t *testing.T) {
		require.False(t, base.Live(base.ExpiresAt.Add(time.Second)))
	})

	t.Run("dead without a refresh token", func(t *testing.T) {
		empty := base
		empty.RefreshToken = ""
		require.False(t, empty.Live(now))
	})
}

func TestUserMembershipHelpers(t *testing.T) {
	t.Parallel()

	user := User{
		Username: "alice",
		Roles:    []Role{RoleUser, RoleAdmin},
		Companies: []Company{
			{ID: 1, Name: "First"},
			{ID: 2, Name: "Second"},
		},
	}

	require.True(t, user.HasRole(RoleAdmin))
	require.False(t, user.HasRole(RoleSuperAdmin))
	require.True(t, user.MemberOf(2))
	require.False(t, user.MemberOf(3))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"ROLE_USER", "ROLE_ADMIN", "ROLE_SUPER_ADMIN"} {
		role, ok := ParseRole(valid)
		require.True(t, ok)
		require.Equal(t, Role(valid), role)
	}

	_, ok := ParseRole("ROLE_ROOT")
	require.False(t, ok)

	_, ok = ParseRole("role_user")
	require.False(t, ok)
}
