package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cms-backend/internal/event"
	"cms-backend/internal/model"
)

type fakeUserStore struct {
	mu           sync.Mutex
	users        map[string]model.User
	companies    *fakeCompanyStore
	provisionErr error
}

func newFakeUserStore(companies *fakeCompanyStore) *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}, companies: companies}
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Provision commits the company and the user together or not at all,
// mirroring the repository transaction.
func (s *fakeUserStore) Provision(ctx context.Context, u model.User, defaultCompany model.Company) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisionErr != nil {
		return model.Company{}, s.provisionErr
	}
	if _, ok := s.users[u.Username]; ok {
		return model.Company{}, model.ErrUserAlreadyExists
	}

	created, err := s.companies.Create(ctx, defaultCompany)
	if err != nil {
		return model.Company{}, err
	}
	u.Companies = []model.Company{created}
	s.users[u.Username] = u
	return created, nil
}

type fakeCompanyStore struct {
	mu        sync.Mutex
	nextID    int64
	companies map[int64]model.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: map[int64]model.Company{}}
}

func (s *fakeCompanyStore) Create(_ context.Context, c model.Company) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.companies[c.ID] = c
	return c, nil
}

func (s *fakeCompanyStore) FindByID(_ context.Context, id int64) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return model.Company{}, model.ErrCompanyNotFound
	}
	return c, nil
}

// fakeSessionStore mirrors the revoke-then-insert transaction with a single
// mutex, so concurrent rotations serialize the same way the row lock does.
type fakeSessionStore struct {
	mu      sync.Mutex
	records []model.SessionToken
}

func (s *fakeSessionStore) Save(_ context.Context, access string, refresh string, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, model.SessionToken{
		ID:           fmt.Sprintf("tok-%d", len(s.records)+1),
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		ExpiresAt:    expiresAt,
	})
	return nil
}

func (s *fakeSessionStore) Rotate(_ context.Context, userID string, access string, refresh string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].UserID == userID {
			s.records[i].Revoked = true
		}
	}
	s.records = append(s.records, model.SessionToken{
		ID:           fmt.Sprintf("tok-%d", len(s.records)+1),
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		ExpiresAt:    expiresAt,
	})
	return nil
}

func (s *fakeSessionStore) FindByAccessToken(_ context.Context, token string) (model.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.AccessToken == token {
			return rec, nil
		}
	}
	return model.SessionToken{}, model.ErrTokenNotFound
}

func (s *fakeSessionStore) FindByRefreshToken(_ context.Context, token string) (model.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.RefreshToken == token {
			return rec, nil
		}
	}
	return model.SessionToken{}, model.ErrTokenNotFound
}

func (s *fakeSessionStore) liveFor(userID string, now time.Time) []model.SessionToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var live []model.SessionToken
	for _, rec := range s.records {
		if rec.UserID == userID && rec.Live(now) {
			live = append(live, rec)
		}
	}
	return live
}

type authFixture struct {
	svc       *AuthService
	users     *fakeUserStore
	companies *fakeCompanyStore
	tokens    *fakeSessionStore
	bus       *event.InMemoryBus
	now       time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewTokenCodec("auth-service-test-secret")
	require.NoError(t, err)
	codec.now = func() time.Time { return now }

	companies := newFakeCompanyStore()
	f := &authFixture{
		users:     newFakeUserStore(companies),
		companies: companies,
		tokens:    &fakeSessionStore{},
		bus:       event.NewBus(),
		now:       now,
	}
	f.svc = NewAuthService(f.users, f.companies, f.tokens, codec, NewCompanyScopeGuard(), f.bus, 15*time.Minute, 168*time.Hour)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *authFixture) register(t *testing.T, username string) model.AuthResult {
	t.Helper()

	result, err := f.svc.Register(context.Background(), model.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return result
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with default company and first session", func(t *testing.T) {
		f := newAuthFixture(t)
		events, unsubscribe := f.bus.Subscribe()
		defer unsubscribe()

		result := f.register(t, "alice")

		require.NotEmpty(t, result.AccessToken)
		require.NotEmpty(t, result.RefreshToken)
		require.Equal(t, "Bearer", result.TokenType)
		require.Equal(t, []model.Role{model.RoleUser}, result.Profile.Roles)

		require.Len(t, result.Companies, 1)
		require.Equal(t, "alice's Default Company", result.ActiveCompany.Name)

		user, err := f.users.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.NotEqual(t, "s3cret-pass", user.PasswordHash)

		live := f.tokens.liveFor(user.ID, f.now)
		require.Len(t, live, 1)

		select {
		case e := <-events:
			require.Equal(t, event.TypeUserRegistered, e.Type)
		default:
			t.Fatal("expected a user.registered event")
		}
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")

		_, err := f.svc.Register(context.Background(), model.RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "pass",
		})
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")

		_, err := f.svc.Register(context.Background(), model.RegisterRequest{
			Username: "bob",
			Email:    "alice@example.com",
			Password: "pass",
		})
		require.ErrorIs(t, err, model.ErrEmailAlreadyExists)
	})

	t.Run("failed registration leaves no company behind", func(t *testing.T) {
		f := newAuthFixture(t)
		// The race the pre-checks cannot catch: a duplicate commits
		// between the existence check and the insert.
		f.users.provisionErr = model.ErrUserAlreadyExists

		_, err := f.svc.Register(context.Background(), model.RegisterRequest{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "pass",
		})
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)

		f.companies.mu.Lock()
		require.Empty(t, f.companies.companies)
		f.companies.mu.Unlock()

		f.tokens.mu.Lock()
		require.Empty(t, f.tokens.records)
		f.tokens.mu.Unlock()
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(context.Background(), model.RegisterRequest{
			Username: "mallory",
			Email:    "mallory@example.com",
			Password: "pass",
			Roles:    []string{"ROLE_ROOT"},
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("issues pair bound to the default company", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")

		result, err := f.svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "s3cret-pass"})
		require.NoError(t, err)
		require.Equal(t, "alice's Default Company", result.ActiveCompany.Name)

		companyID, err := f.svc.codec.ExtractCompanyID(result.AccessToken)
		require.NoError(t, err)
		require.Equal(t, result.ActiveCompany.ID, companyID)
	})

	t.Run("wrong password leaves no session behind", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")
		user, _ := f.users.FindByUsername(context.Background(), "alice")
		before := len(f.tokens.liveFor(user.ID, f.now))

		_, err := f.svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "wrong"})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
		require.Len(t, f.tokens.liveFor(user.ID, f.now), before)
	})

	t.Run("unknown user reported as invalid credentials", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Login(context.Background(), model.LoginRequest{Username: "ghost", Password: "pass"})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("login revokes every previously issued pair", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")
		user, _ := f.users.FindByUsername(context.Background(), "alice")

		_, err := f.svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "s3cret-pass"})
		require.NoError(t, err)

		require.Len(t, f.tokens.liveFor(user.ID, f.now), 1)
		_, _, err = f.svc.VerifyAccess(context.Background(), first.AccessToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("user without memberships cannot log in", func(t *testing.T) {
		f := newAuthFixture(t)
		// Seed directly: registration always provisions a company.
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		require.NoError(t, err)
		f.users.users["orphan"] = model.User{
			ID:           "u-orphan",
			Username:     "orphan",
			PasswordHash: string(hash),
		}

		_, err = f.svc.Login(context.Background(), model.LoginRequest{Username: "orphan", Password: "password"})
		require.ErrorIs(t, err, model.ErrNoCompanies)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the pair and keeps the company binding", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")

		refreshed, err := f.svc.Refresh(context.Background(), first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.AccessToken, refreshed.AccessToken)
		require.Equal(t, first.ActiveCompany.ID, refreshed.ActiveCompany.ID)
	})

	t.Run("a consumed refresh token cannot be replayed", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")

		_, err := f.svc.Refresh(context.Background(), first.RefreshToken)
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Refresh(context.Background(), "")
		require.ErrorIs(t, err, model.ErrTokenMissing)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")

		later := f.now.Add(200 * time.Hour)
		f.svc.codec.now = func() time.Time { return later }
		f.svc.now = func() time.Time { return later }

		_, err := f.svc.Refresh(context.Background(), first.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("refresh bound to a deleted company fails", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")

		f.companies.mu.Lock()
		delete(f.companies.companies, first.ActiveCompany.ID)
		f.companies.mu.Unlock()

		_, err := f.svc.Refresh(context.Background(), first.RefreshToken)
		require.ErrorIs(t, err, model.ErrCompanyNotFound)
	})
}

func TestSwitchCompany(t *testing.T) {
	t.Parallel()

	addMembership := func(f *authFixture, username string, company model.Company) model.Company {
		created, _ := f.companies.Create(context.Background(), company)
		f.users.mu.Lock()
		user := f.users.users[username]
		user.Companies = append(user.Companies, created)
		f.users.users[username] = user
		f.users.mu.Unlock()
		return created
	}

	t.Run("rebinds the session to the chosen membership", func(t *testing.T) {
		f := newAuthFixture(t)
		first := f.register(t, "alice")
		second := addMembership(f, "alice", model.Company{Name: "Second Co", Enabled: true})

		result, err := f.svc.SwitchCompany(context.Background(), "alice", second.ID)
		require.NoError(t, err)
		require.Equal(t, second.ID, result.ActiveCompany.ID)

		companyID, err := f.svc.codec.ExtractCompanyID(result.AccessToken)
		require.NoError(t, err)
		require.Equal(t, second.ID, companyID)

		// The pre-switch pair is dead.
		_, _, err = f.svc.VerifyAccess(context.Background(), first.AccessToken)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("switching to a non-membership fails", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")
		foreign, _ := f.companies.Create(context.Background(), model.Company{Name: "Foreign", Enabled: true})

		_, err := f.svc.SwitchCompany(context.Background(), "alice", foreign.ID)
		require.ErrorIs(t, err, model.ErrNotCompanyMember)
	})

	t.Run("switching to an unknown company fails", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")

		_, err := f.svc.SwitchCompany(context.Background(), "alice", 404)
		require.ErrorIs(t, err, model.ErrCompanyNotFound)
	})
}

func TestVerifyAccess(t *testing.T) {
	t.Parallel()

	t.Run("accepts a live token", func(t *testing.T) {
		f := newAuthFixture(t)
		result := f.register(t, "alice")

		user, claims, err := f.svc.VerifyAccess(context.Background(), result.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
		require.Equal(t, result.ActiveCompany.ID, claims.CompanyID)
	})

	t.Run("rejects a well signed token with no store record", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "alice")

		stray, err := f.svc.codec.Generate(model.User{Username: "alice"}, model.Company{ID: 1, Name: "x"}, time.Hour)
		require.NoError(t, err)

		_, _, err = f.svc.VerifyAccess(context.Background(), stray)
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})
}

func TestConcurrentRotationsLeaveOneLivePair(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.register(t, "alice")
	user, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "s3cret-pass"})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, f.tokens.liveFor(user.ID, f.now), 1)
}
