package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"cms-backend/internal/model"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	roles := make([]string, 0, len(entry.Actor.Roles))
	for _, role := range entry.Actor.Roles {
		roles = append(roles, string(role))
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_username, actor_roles, actor_ip, status, target, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.Action, entry.OccurredAt,
		entry.Actor.UserID, entry.Actor.Username, strings.Join(roles, ","), entry.Actor.IP,
		entry.Status, entry.Target, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if q.Action != "" {
		args = append(args, q.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.ActorID != "" {
		args = append(args, q.ActorID)
		where = append(where, fmt.Sprintf("actor_user_id = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	args = append(args, q.Limit)
	limitPos := len(args)
	args = append(args, (q.Page-1)*q.Limit)
	offsetPos := len(args)

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT id, action, occurred_at, actor_user_id, actor_username, actor_roles, actor_ip, status, target, error_text
		 FROM audit_entries%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`, clause, limitPos, offsetPos),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0, q.Limit)
	for rows.Next() {
		var e model.AuditEntry
		var roles string
		if err := rows.Scan(&e.ID, &e.Action, &e.OccurredAt, &e.Actor.UserID, &e.Actor.Username,
			&roles, &e.Actor.IP, &e.Status, &e.Target, &e.Error); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if roles != "" {
			for _, role := range strings.Split(roles, ",") {
				e.Actor.Roles = append(e.Actor.Roles, model.Role(role))
			}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
