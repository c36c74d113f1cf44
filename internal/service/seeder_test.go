package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cms-backend/internal/model"
)

type fakeSeedUserStore struct {
	users map[string]model.User
}

func (s *fakeSeedUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeSeedUserStore) Create(_ context.Context, u model.User) error {
	if _, ok := s.users[u.Username]; ok {
		return model.ErrUserAlreadyExists
	}
	s.users[u.Username] = u
	return nil
}

type fakeSeedCompanyStore struct {
	nextID    int64
	companies []model.Company
}

func (s *fakeSeedCompanyStore) Create(_ context.Context, c model.Company) (model.Company, error) {
	s.nextID++
	c.ID = s.nextID
	s.companies = append(s.companies, c)
	return c, nil
}

func (s *fakeSeedCompanyStore) List(_ context.Context) ([]model.Company, error) {
	return s.companies, nil
}

func TestSeeder(t *testing.T) {
	t.Parallel()

	t.Run("empty database gets default companies and a super admin", func(t *testing.T) {
		users := &fakeSeedUserStore{users: map[string]model.User{}}
		companies := &fakeSeedCompanyStore{}
		seeder := NewSeeder(users, companies, "Johnny", "johnny@example.com", "Admin123*")

		require.NoError(t, seeder.Run(context.Background()))

		require.Len(t, companies.companies, 2)
		require.Equal(t, "Company A", companies.companies[0].Name)
		require.Equal(t, "Company B", companies.companies[1].Name)

		admin, err := users.FindByUsername(context.Background(), "Johnny")
		require.NoError(t, err)
		require.Equal(t, []model.Role{model.RoleSuperAdmin}, admin.Roles)
		require.Len(t, admin.Companies, 1)
		require.Equal(t, "Company A", admin.Companies[0].Name)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin123*")))
	})

	t.Run("populated database is left untouched", func(t *testing.T) {
		users := &fakeSeedUserStore{users: map[string]model.User{
			"Johnny": {ID: "u-1", Username: "Johnny", PasswordHash: "keep-me"},
		}}
		companies := &fakeSeedCompanyStore{}
		_, err := companies.Create(context.Background(), model.Company{Name: "Existing Co", Enabled: true})
		require.NoError(t, err)

		seeder := NewSeeder(users, companies, "Johnny", "johnny@example.com", "Admin123*")
		require.NoError(t, seeder.Run(context.Background()))

		require.Len(t, companies.companies, 1)
		require.Equal(t, "keep-me", users.users["Johnny"].PasswordHash)
	})

	t.Run("missing admin password skips the admin account", func(t *testing.T) {
		users := &fakeSeedUserStore{users: map[string]model.User{}}
		companies := &fakeSeedCompanyStore{}

		seeder := NewSeeder(users, companies, "Johnny", "johnny@example.com", "")
		require.NoError(t, seeder.Run(context.Background()))

		require.Len(t, companies.companies, 2)
		require.Empty(t, users.users)
	})
}
