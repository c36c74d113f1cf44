package service

import "cms-backend/internal/model"

// Operation names a permission-gated action. Operations are checked in
// addition to company scoping, never instead of it.
type Operation string

const (
	OpInventoryRead  Operation = "inventory:read"
	OpInventoryWrite Operation = "inventory:write"
	OpCompanyRead    Operation = "company:read"
	OpCompanyAdmin   Operation = "company:admin"
	OpCountryRead    Operation = "country:read"
	OpCountryWrite   Operation = "country:write"
	OpSettingsRead   Operation = "settings:read"
	OpSettingsWrite  Operation = "settings:write"
	OpUserAdmin      Operation = "user:admin"
	OpAuditRead      Operation = "audit:read"
)

// AccessControlPolicy is the static role→operation table. The base role is
// read-only inside the active company, the admin role mutates resources
// there, and the super admin additionally administers companies and users —
// still only within whatever company the session is bound to.
type AccessControlPolicy struct {
	allowed map[model.Role]map[Operation]struct{}
}

func NewAccessControlPolicy() *AccessControlPolicy {
	grants := map[model.Role][]Operation{
		model.RoleUser: {
			OpInventoryRead, OpCompanyRead, OpCountryRead, OpSettingsRead,
		},
		model.RoleAdmin: {
			OpInventoryRead, OpInventoryWrite, OpCompanyRead, OpCountryRead,
			OpSettingsRead, OpSettingsWrite,
		},
		model.RoleSuperAdmin: {
			OpInventoryRead, OpInventoryWrite, OpCompanyRead, OpCompanyAdmin,
			OpCountryRead, OpCountryWrite, OpSettingsRead, OpSettingsWrite,
			OpUserAdmin, OpAuditRead,
		},
	}

	allowed := make(map[model.Role]map[Operation]struct{}, len(grants))
	for role, ops := range grants {
		set := make(map[Operation]struct{}, len(ops))
		for _, op := range ops {
			set[op] = struct{}{}
		}
		allowed[role] = set
	}
	return &AccessControlPolicy{allowed: allowed}
}

// Allowed reports whether any of the roles grants the operation.
func (p *AccessControlPolicy) Allowed(roles []model.Role, op Operation) bool {
	for _, role := range roles {
		if set, ok := p.allowed[role]; ok {
			if _, ok := set[op]; ok {
				return true
			}
		}
	}
	return false
}
