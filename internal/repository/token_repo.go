package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cms-backend/internal/model"
)

// TokenRepository is the durable store of issued token pairs. Supersession
// flips the revoked flag; physical deletion happens only in Sweep.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Save inserts a fresh pair without touching existing records. Used for the
// first session of a newly registered user.
func (r *TokenRepository) Save(ctx context.Context, accessToken string, refreshToken string, userID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_tokens (id, access_token, refresh_token, user_id, revoked, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5, $6)`,
		uuid.NewString(), accessToken, refreshToken, userID, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session tokens: %w", err)
	}
	return nil
}

// Rotate revokes every live pair for the user and inserts the successor as
// one transaction. The row lock on the user serializes concurrent rotations
// so that exactly one pair is live afterwards; without it two interleaved
// refresh calls could leave two live pairs or none.
func (r *TokenRepository) Rotate(ctx context.Context, userID string, accessToken string, refreshToken string, expiresAt time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin token rotation: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID string
	err = tx.QueryRow(ctx, `SELECT id FROM cms_users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user for token rotation: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE session_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`, userID); err != nil {
		return fmt.Errorf("revoke superseded tokens: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO session_tokens (id, access_token, refresh_token, user_id, revoked, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5, $6)`,
		uuid.NewString(), accessToken, refreshToken, userID, expiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert successor tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit token rotation: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByAccessToken(ctx context.Context, token string) (model.SessionToken, error) {
	return r.findBy(ctx, "access_token", token)
}

func (r *TokenRepository) FindByRefreshToken(ctx context.Context, token string) (model.SessionToken, error) {
	return r.findBy(ctx, "refresh_token", token)
}

func (r *TokenRepository) findBy(ctx context.Context, column string, token string) (model.SessionToken, error) {
	var t model.SessionToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, access_token, refresh_token, user_id, revoked, expires_at, created_at
		 FROM session_tokens WHERE `+column+` = $1`, token).
		Scan(&t.ID, &t.AccessToken, &t.RefreshToken, &t.UserID, &t.Revoked, &t.ExpiresAt, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.SessionToken{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.SessionToken{}, fmt.Errorf("find session token by %s: %w", column, err)
	}
	return t, nil
}

// RevokeAllForUser flags every live pair dead without minting a successor.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE session_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`, userID)
	if err != nil {
		return fmt.Errorf("revoke tokens for user: %w", err)
	}
	return nil
}

// Sweep physically removes records that are revoked, stripped of their
// refresh token, or expired before the given instant. Safe to run next to
// live traffic: it only touches rows already dead.
func (r *TokenRepository) Sweep(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM session_tokens WHERE revoked OR refresh_token = '' OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("sweep session tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
