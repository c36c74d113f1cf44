package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cms-backend/internal/event"
	"cms-backend/internal/model"
)

const bcryptCost = 12

// UserStore is the persistence surface AuthService needs for users.
// Provision must create the default company, the user and its membership as
// one atomic unit: a failed registration leaves no rows behind.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Provision(ctx context.Context, u model.User, defaultCompany model.Company) (model.Company, error)
}

// CompanyStore is the read surface AuthService needs for companies.
// Company creation happens inside UserStore.Provision during registration
// and through the administrative CRUD otherwise.
type CompanyStore interface {
	FindByID(ctx context.Context, id int64) (model.Company, error)
}

// SessionStore is the durable token-pair store. Rotate must revoke the
// predecessors and insert the successor atomically.
type SessionStore interface {
	Save(ctx context.Context, accessToken string, refreshToken string, userID string, expiresAt time.Time) error
	Rotate(ctx context.Context, userID string, accessToken string, refreshToken string, expiresAt time.Time) error
	FindByAccessToken(ctx context.Context, token string) (model.SessionToken, error)
	FindByRefreshToken(ctx context.Context, token string) (model.SessionToken, error)
}

// AuthService owns the mint-new/revoke-old session protocol: registration,
// authentication, refresh and company switching all funnel through it.
type AuthService struct {
	users      UserStore
	companies  CompanyStore
	tokens     SessionStore
	codec      *TokenCodec
	guard      *CompanyScopeGuard
	bus        event.Bus
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(
	users UserStore,
	companies CompanyStore,
	tokens SessionStore,
	codec *TokenCodec,
	guard *CompanyScopeGuard,
	bus event.Bus,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:      users,
		companies:  companies,
		tokens:     tokens,
		codec:      codec,
		guard:      guard,
		bus:        bus,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the user, provisions their default company and issues the
// first token pair. The first session has no predecessors to revoke.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return model.AuthResult{}, model.ErrInvalidInput
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.AuthResult{}, err
	} else if exists {
		return model.AuthResult{}, model.ErrUserAlreadyExists
	}
	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.AuthResult{}, err
	} else if exists {
		return model.AuthResult{}, model.ErrEmailAlreadyExists
	}

	roles := make([]model.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		role, ok := model.ParseRole(raw)
		if !ok {
			return model.AuthResult{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, raw)
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// One atomic unit: the pre-checks above cannot catch a concurrent
	// duplicate, and a half-done registration must not leave a company
	// behind.
	defaultCompany, err := s.users.Provision(ctx, user, model.Company{
		Name:         username + "'s Default Company",
		PrimaryEmail: email,
		Enabled:      true,
	})
	if err != nil {
		return model.AuthResult{}, err
	}
	user.Companies = []model.Company{defaultCompany}

	pair, err := s.mint(user, defaultCompany)
	if err != nil {
		return model.AuthResult{}, err
	}
	if err := s.tokens.Save(ctx, pair.AccessToken, pair.RefreshToken, user.ID, s.now().Add(s.refreshTTL)); err != nil {
		return model.AuthResult{}, err
	}

	s.publish(event.TypeUserRegistered, user, nil)
	slog.Info("user registered", "username", user.Username, "company_id", defaultCompany.ID)

	return buildAuthResult(pair, user, defaultCompany, "User registered successfully"), nil
}

// Login verifies credentials and issues a pair bound to the user's default
// company: the earliest-assigned membership.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		// Do not reveal whether the username exists.
		return model.AuthResult{}, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResult{}, model.ErrInvalidCredentials
	}
	if len(user.Companies) == 0 {
		return model.AuthResult{}, model.ErrNoCompanies
	}

	defaultCompany := user.Companies[0]
	pair, err := s.mint(user, defaultCompany)
	if err != nil {
		return model.AuthResult{}, err
	}
	if err := s.tokens.Rotate(ctx, user.ID, pair.AccessToken, pair.RefreshToken, s.now().Add(s.refreshTTL)); err != nil {
		return model.AuthResult{}, err
	}

	s.publish(event.TypeUserLogin, user, nil)
	slog.Info("user authenticated", "username", user.Username, "company_id", defaultCompany.ID)

	return buildAuthResult(pair, user, defaultCompany, "User login was successful"), nil
}

// Refresh exchanges a live refresh token for a new pair bound to the same
// company. The consumed pair is revoked; replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.AuthResult{}, model.ErrTokenMissing
	}

	claims, err := s.codec.VerifyAndDecode(refreshToken)
	if err != nil {
		return model.AuthResult{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return model.AuthResult{}, err
	}

	record, err := s.tokens.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return model.AuthResult{}, model.ErrTokenRevoked
	}
	if !record.Live(s.now()) {
		return model.AuthResult{}, model.ErrTokenRevoked
	}
	if record.UserID != user.ID {
		return model.AuthResult{}, model.ErrTokenSubjectMismatch
	}

	if _, err := s.companies.FindByID(ctx, claims.CompanyID); err != nil {
		return model.AuthResult{}, err
	}
	company, err := s.guard.ResolveActiveCompany(user, claims)
	if err != nil {
		return model.AuthResult{}, err
	}

	pair, err := s.mint(user, company)
	if err != nil {
		return model.AuthResult{}, err
	}
	if err := s.tokens.Rotate(ctx, user.ID, pair.AccessToken, pair.RefreshToken, s.now().Add(s.refreshTTL)); err != nil {
		return model.AuthResult{}, err
	}

	slog.Info("tokens refreshed", "username", user.Username, "company_id", company.ID)
	return buildAuthResult(pair, user, company, "Tokens refreshed successfully"), nil
}

// SwitchCompany rebinds the caller's session to another of their
// memberships. All previously issued pairs die with the rotation.
func (s *AuthService) SwitchCompany(ctx context.Context, username string, companyID int64) (model.AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return model.AuthResult{}, err
	}

	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !user.MemberOf(companyID) {
		return model.AuthResult{}, model.ErrNotCompanyMember
	}

	pair, err := s.mint(user, company)
	if err != nil {
		return model.AuthResult{}, err
	}
	if err := s.tokens.Rotate(ctx, user.ID, pair.AccessToken, pair.RefreshToken, s.now().Add(s.refreshTTL)); err != nil {
		return model.AuthResult{}, err
	}

	s.publish(event.TypeCompanySwitched, user, &company)
	slog.Info("company switched", "username", user.Username, "company_id", company.ID)

	return buildAuthResult(pair, user, company, "Company switched to "+company.Name), nil
}

// Profile resolves the authenticated caller's user record.
func (s *AuthService) Profile(ctx context.Context, username string) (model.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// VerifyAccess is the per-request check: signature and expiry via the codec,
// then liveness and subject ownership against the store.
func (s *AuthService) VerifyAccess(ctx context.Context, tokenString string) (model.User, *model.SessionClaims, error) {
	claims, err := s.codec.VerifyAndDecode(tokenString)
	if err != nil {
		return model.User{}, nil, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return model.User{}, nil, model.ErrUnauthorized
	}

	record, err := s.tokens.FindByAccessToken(ctx, tokenString)
	if err != nil {
		return model.User{}, nil, model.ErrTokenRevoked
	}
	if !record.Live(s.now()) {
		return model.User{}, nil, model.ErrTokenRevoked
	}
	if record.UserID != user.ID {
		return model.User{}, nil, model.ErrTokenSubjectMismatch
	}

	return user, claims, nil
}

func (s *AuthService) mint(user model.User, company model.Company) (model.TokenPair, error) {
	accessToken, err := s.codec.Generate(user, company, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.codec.Generate(user, company, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// publish hands the notification to the bus; delivery is best effort and
// never affects the outcome of the calling operation.
func (s *AuthService) publish(eventType event.Type, user model.User, company *model.Company) {
	if s.bus == nil {
		return
	}

	payload := event.UserPayload{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		Email:     user.Email,
	}

	e := event.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: s.now().Format(time.RFC3339Nano),
		ActorID:   user.ID,
	}
	if company != nil {
		e.Payload = event.SwitchPayload{UserPayload: payload, CompanyID: company.ID, CompanyName: company.Name}
	} else {
		e.Payload = payload
	}

	s.bus.Publish(e)
}

func buildAuthResult(pair model.TokenPair, user model.User, active model.Company, message string) model.AuthResult {
	companies := make([]model.CompanySummary, 0, len(user.Companies))
	for _, c := range user.Companies {
		companies = append(companies, c.Summary())
	}

	return model.AuthResult{
		TokenPair:     pair,
		Message:       message,
		Profile:       user.Profile(),
		Companies:     companies,
		ActiveCompany: active.Summary(),
	}
}
