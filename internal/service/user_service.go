package service

import (
	"context"
	"fmt"
	"log/slog"

	"cms-backend/internal/model"
)

// UserAdminStore is the persistence surface for user administration.
type UserAdminStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ReplaceRoles(ctx context.Context, userID string, roles []model.Role) error
	AddMembership(ctx context.Context, userID string, companyID int64) error
	RemoveMembership(ctx context.Context, userID string, companyID int64) error
}

// SessionRevoker invalidates every stored session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

// UserService covers super-admin user management: listing accounts,
// reassigning roles and editing company memberships.
type UserService struct {
	users     UserAdminStore
	companies CompanyStore
	tokens    SessionRevoker
}

func NewUserService(users UserAdminStore, companies CompanyStore, tokens SessionRevoker) *UserService {
	return &UserService{users: users, companies: companies, tokens: tokens}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateRoles replaces the user's role set and revokes their sessions so the
// change takes effect immediately rather than at token expiry.
func (s *UserService) UpdateRoles(ctx context.Context, userID string, req model.UpdateRolesRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if len(req.Roles) == 0 {
		return model.User{}, fmt.Errorf("%w: at least one role is required", model.ErrInvalidInput)
	}

	roles := make([]model.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		role, ok := model.ParseRole(raw)
		if !ok {
			return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, raw)
		}
		roles = append(roles, role)
	}

	if err := s.users.ReplaceRoles(ctx, user.ID, roles); err != nil {
		return model.User{}, err
	}
	if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		slog.Error("revoke sessions after role change", "user_id", user.ID, "error", err)
	}

	user.Roles = roles
	return user, nil
}

func (s *UserService) AddMembership(ctx context.Context, userID string, companyID int64) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return err
	}
	return s.users.AddMembership(ctx, userID, companyID)
}

// RemoveMembership drops the membership and revokes the user's sessions: a
// live token bound to the removed company must not keep working.
func (s *UserService) RemoveMembership(ctx context.Context, userID string, companyID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.MemberOf(companyID) {
		return model.ErrNotCompanyMember
	}

	if err := s.users.RemoveMembership(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("revoke sessions after membership removal", "user_id", userID, "error", err)
	}
	return nil
}
