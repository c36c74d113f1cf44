package service

import (
	"cms-backend/internal/model"
)

// CompanyScopeGuard derives the active company for a request and checks
// every company-owned resource against it. It is the single place company
// binding is resolved; resource services must not re-implement the check.
type CompanyScopeGuard struct{}

func NewCompanyScopeGuard() *CompanyScopeGuard {
	return &CompanyScopeGuard{}
}

// ResolveActiveCompany returns the company the verified claims bind the
// session to. The binding must name one of the user's memberships; anything
// else is an authorization failure, never a fallback.
func (g *CompanyScopeGuard) ResolveActiveCompany(user model.User, claims *model.SessionClaims) (model.Company, error) {
	if claims == nil || claims.CompanyID == 0 {
		return model.Company{}, model.ErrNoCompanyBinding
	}

	for _, c := range user.Companies {
		if c.ID == claims.CompanyID {
			return c, nil
		}
	}
	return model.Company{}, model.ErrCompanyMismatch
}

// AssertOwnedBy requires the resource to belong to the active company. This
// is the core isolation invariant: no role bypasses it, including the
// highest-privilege one.
func (g *CompanyScopeGuard) AssertOwnedBy(resource model.CompanyScoped, active model.Company) error {
	if resource == nil {
		return model.ErrInvalidInput
	}
	if resource.OwnerCompanyID() != active.ID {
		return model.ErrCompanyMismatch
	}
	return nil
}
