package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cms-backend/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, `WHERE u.id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, `WHERE lower(u.username) = lower($1)`, strings.TrimSpace(username))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, `WHERE lower(u.email) = lower($1)`, strings.TrimSpace(email))
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.username, u.email, u.password_hash, u.created_at, u.updated_at
		 FROM cms_users u `+where, arg).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}

	if u.Roles, err = r.rolesOf(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	if u.Companies, err = r.companiesOf(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepository) rolesOf(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, fmt.Errorf("load user roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0, 2)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, model.Role(role))
	}
	return roles, rows.Err()
}

// companiesOf returns memberships ordered by assignment time, oldest first.
// The first element is the user's default company.
func (r *UserRepository) companiesOf(ctx context.Context, userID string) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.primary_email, c.enabled, c.created_at, c.updated_at
		 FROM companies c
		 JOIN user_companies uc ON uc.company_id = c.id
		 WHERE uc.user_id = $1
		 ORDER BY uc.assigned_at, c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("load user companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0, 2)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.PrimaryEmail, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Create persists the user together with roles and memberships to already
// existing companies in one transaction.
func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertUser(ctx, tx, u); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// Provision creates the user's default company, the user itself, its roles
// and the initial membership as a single transaction. A failure on any step
// rolls back the whole registration, so no orphan company can surface in
// listings.
func (r *UserRepository) Provision(ctx context.Context, u model.User, defaultCompany model.Company) (model.Company, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Company{}, fmt.Errorf("begin provision user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	err = tx.QueryRow(ctx,
		`INSERT INTO companies (name, primary_email, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		defaultCompany.Name, defaultCompany.PrimaryEmail, defaultCompany.Enabled, now).Scan(&defaultCompany.ID)
	if err != nil {
		return model.Company{}, fmt.Errorf("create default company: %w", err)
	}
	defaultCompany.CreatedAt = now
	defaultCompany.UpdatedAt = now

	u.Companies = []model.Company{defaultCompany}
	if err := insertUser(ctx, tx, u); err != nil {
		return model.Company{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Company{}, fmt.Errorf("commit provision user: %w", err)
	}
	return defaultCompany, nil
}

func insertUser(ctx context.Context, tx pgx.Tx, u model.User) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO cms_users (id, first_name, last_name, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	for _, role := range u.Roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, string(role)); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
	}

	for _, company := range u.Companies {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_companies (user_id, company_id, assigned_at) VALUES ($1, $2, $3)`,
			u.ID, company.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("assign company: %w", err)
		}
	}
	return nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cms_users WHERE lower(username) = lower($1))`,
		strings.TrimSpace(username)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cms_users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ReplaceRoles(ctx context.Context, userID string, roles []model.Role) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace roles: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, string(role)); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE cms_users SET updated_at = $2 WHERE id = $1`, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace roles: %w", err)
	}
	return nil
}

func (r *UserRepository) AddMembership(ctx context.Context, userID string, companyID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_companies (user_id, company_id, assigned_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, company_id) DO NOTHING`,
		userID, companyID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

func (r *UserRepository) RemoveMembership(ctx context.Context, userID string, companyID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_companies WHERE user_id = $1 AND company_id = $2`, userID, companyID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotCompanyMember
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, username, email, created_at, updated_at
		 FROM cms_users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Roles, err = r.rolesOf(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
