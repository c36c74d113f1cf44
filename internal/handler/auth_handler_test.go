package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cms-backend/internal/model"
	"cms-backend/internal/service"
)

type memUserStore struct {
	mu        sync.Mutex
	users     map[string]model.User
	companies *memCompanyStore
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Provision(ctx context.Context, u model.User, defaultCompany model.Company) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.companies.Create(ctx, defaultCompany)
	if err != nil {
		return model.Company{}, err
	}
	u.Companies = []model.Company{created}
	s.users[u.Username] = u
	return created, nil
}

type memCompanyStore struct {
	mu        sync.Mutex
	nextID    int64
	companies map[int64]model.Company
}

func (s *memCompanyStore) Create(_ context.Context, c model.Company) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.companies[c.ID] = c
	return c, nil
}

func (s *memCompanyStore) FindByID(_ context.Context, id int64) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return model.Company{}, model.ErrCompanyNotFound
	}
	return c, nil
}

type memSessionStore struct {
	mu      sync.Mutex
	records []model.SessionToken
}

func (s *memSessionStore) Save(_ context.Context, access string, refresh string, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, model.SessionToken{
		AccessToken: access, RefreshToken: refresh, UserID: userID, ExpiresAt: expiresAt,
	})
	return nil
}

func (s *memSessionStore) Rotate(_ context.Context, userID string, access string, refresh string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].UserID == userID {
			s.records[i].Revoked = true
		}
	}
	s.records = append(s.records, model.SessionToken{
		AccessToken: access, RefreshToken: refresh, UserID: userID, ExpiresAt: expiresAt,
	})
	return nil
}

func (s *memSessionStore) FindByAccessToken(_ context.Context, token string) (model.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.AccessToken == token {
			return rec, nil
		}
	}
	return model.SessionToken{}, model.ErrTokenNotFound
}

func (s *memSessionStore) FindByRefreshToken(_ context.Context, token string) (model.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.RefreshToken == token {
			return rec, nil
		}
	}
	return model.SessionToken{}, model.ErrTokenNotFound
}

func newAuthTestHandler(t *testing.T) *AuthHandler {
	t.Helper()

	codec, err := service.NewTokenCodec("handler-test-secret")
	require.NoError(t, err)

	companies := &memCompanyStore{companies: map[int64]model.Company{}}
	svc := service.NewAuthService(
		&memUserStore{users: map[string]model.User{}, companies: companies},
		companies,
		&memSessionStore{},
		codec,
		service.NewCompanyScopeGuard(),
		nil,
		15*time.Minute,
		168*time.Hour,
	)
	return NewAuthHandler(svc, 168*time.Hour)
}

func registerAlice(t *testing.T, h *AuthHandler) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(model.RegisterRequest{
		FirstName: "Alice",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	return rec
}

func refreshCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "refresh_token" {
			return cookie
		}
	}
	t.Fatal("refresh_token cookie not set")
	return nil
}

func TestAuthHandlerRefreshCookieContract(t *testing.T) {
	t.Parallel()

	h := newAuthTestHandler(t)
	rec := registerAlice(t, h)

	cookie := refreshCookieFrom(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, 604800, cookie.MaxAge)
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	h := newAuthTestHandler(t)
	registerAlice(t, h)

	t.Run("valid credentials set a fresh cookie", func(t *testing.T) {
		body, _ := json.Marshal(model.LoginRequest{Username: "alice", Password: "s3cret-pass"})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, refreshCookieFrom(t, rec).Value)

		var resp model.APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
	})

	t.Run("bad credentials yield 401 and no cookie", func(t *testing.T) {
		body, _ := json.Marshal(model.LoginRequest{Username: "alice", Password: "nope"})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	t.Parallel()

	t.Run("missing cookie yields 401", func(t *testing.T) {
		h := newAuthTestHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/refresh_token", nil)
		rec := httptest.NewRecorder()
		h.Refresh(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie rotates the pair", func(t *testing.T) {
		h := newAuthTestHandler(t)
		registered := registerAlice(t, h)
		first := refreshCookieFrom(t, registered)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/refresh_token", nil)
		req.AddCookie(first)
		rec := httptest.NewRecorder()
		h.Refresh(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		second := refreshCookieFrom(t, rec)
		require.NotEqual(t, first.Value, second.Value)
	})

	t.Run("replaying a consumed cookie fails and clears it", func(t *testing.T) {
		h := newAuthTestHandler(t)
		registered := registerAlice(t, h)
		first := refreshCookieFrom(t, registered)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/refresh_token", nil)
		req.AddCookie(first)
		h.Refresh(httptest.NewRecorder(), req)

		replay := httptest.NewRequest(http.MethodPost, "/api/v2/auth/refresh_token", nil)
		replay.AddCookie(first)
		rec := httptest.NewRecorder()
		h.Refresh(rec, replay)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, -1, refreshCookieFrom(t, rec).MaxAge)
	})
}
