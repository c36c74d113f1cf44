package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cms-backend/internal/model"
)

// SeedUserStore is the persistence surface the seeder needs for users.
type SeedUserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) error
}

// SeedCompanyStore is the persistence surface the seeder needs for
// companies.
type SeedCompanyStore interface {
	Create(ctx context.Context, c model.Company) (model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
}

// Seeder provisions first-boot data so a fresh deployment is immediately
// operable: two default companies and, when a password is configured, a
// super admin account assigned to the first of them. Every step is
// idempotent; restarting against a populated database changes nothing.
type Seeder struct {
	users         SeedUserStore
	companies     SeedCompanyStore
	adminUsername string
	adminEmail    string
	adminPassword string
}

func NewSeeder(users SeedUserStore, companies SeedCompanyStore, adminUsername string, adminEmail string, adminPassword string) *Seeder {
	return &Seeder{
		users:         users,
		companies:     companies,
		adminUsername: adminUsername,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.companies.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list companies: %w", err)
	}

	if len(existing) == 0 {
		for _, name := range []string{"Company A", "Company B"} {
			created, err := s.companies.Create(ctx, model.Company{Name: name, Enabled: true})
			if err != nil {
				return fmt.Errorf("seed: create company %q: %w", name, err)
			}
			existing = append(existing, created)
		}
		slog.Info("default companies seeded")
	}

	if s.adminUsername == "" || s.adminPassword == "" {
		return nil
	}
	if _, err := s.users.FindByUsername(ctx, s.adminUsername); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("seed: look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := model.User{
		ID:           uuid.NewString(),
		FirstName:    s.adminUsername,
		Username:     s.adminUsername,
		Email:        s.adminEmail,
		PasswordHash: string(hash),
		Roles:        []model.Role{model.RoleSuperAdmin},
		Companies:    existing[:1],
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}

	slog.Info("super admin seeded", "username", s.adminUsername)
	return nil
}
