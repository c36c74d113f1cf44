package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cms-backend/internal/model"
)

func TestAccessControlPolicy(t *testing.T) {
	t.Parallel()

	policy := NewAccessControlPolicy()

	t.Run("base role is read only", func(t *testing.T) {
		roles := []model.Role{model.RoleUser}

		require.True(t, policy.Allowed(roles, OpInventoryRead))
		require.True(t, policy.Allowed(roles, OpCompanyRead))
		require.True(t, policy.Allowed(roles, OpCountryRead))
		require.True(t, policy.Allowed(roles, OpSettingsRead))

		require.False(t, policy.Allowed(roles, OpInventoryWrite))
		require.False(t, policy.Allowed(roles, OpSettingsWrite))
		require.False(t, policy.Allowed(roles, OpCompanyAdmin))
		require.False(t, policy.Allowed(roles, OpUserAdmin))
		require.False(t, policy.Allowed(roles, OpAuditRead))
	})

	t.Run("admin mutates resources but does not administer", func(t *testing.T) {
		roles := []model.Role{model.RoleAdmin}

		require.True(t, policy.Allowed(roles, OpInventoryWrite))
		require.True(t, policy.Allowed(roles, OpSettingsWrite))

		require.False(t, policy.Allowed(roles, OpCompanyAdmin))
		require.False(t, policy.Allowed(roles, OpCountryWrite))
		require.False(t, policy.Allowed(roles, OpUserAdmin))
	})

	t.Run("super admin holds every operation", func(t *testing.T) {
		roles := []model.Role{model.RoleSuperAdmin}

		for _, op := range []Operation{
			OpInventoryRead, OpInventoryWrite, OpCompanyRead, OpCompanyAdmin,
			OpCountryRead, OpCountryWrite, OpSettingsRead, OpSettingsWrite,
			OpUserAdmin, OpAuditRead,
		} {
			require.True(t, policy.Allowed(roles, op), "operation %s", op)
		}
	})

	t.Run("multiple roles grant the union", func(t *testing.T) {
		roles := []model.Role{model.RoleUser, model.RoleAdmin}
		require.True(t, policy.Allowed(roles, OpInventoryWrite))
		require.False(t, policy.Allowed(roles, OpUserAdmin))
	})

	t.Run("no roles grant nothing", func(t *testing.T) {
		require.False(t, policy.Allowed(nil, OpInventoryRead))
	})
}
