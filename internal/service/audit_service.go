package service

import (
	"context"
	"log/slog"
	"time"

	"cms-backend/internal/model"
)

// AuditStore persists and queries the audit trail.
type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error)
}

// AuditService records who did what and when. Recording is best effort: a
// failed write is logged but never fails the operation being audited.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Record writes one entry. opErr, when non-nil, marks the entry as a failure
// and captures the error text.
func (s *AuditService) Record(ctx context.Context, actor model.AuditActor, action string, target string, opErr error) {
	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now(),
		Actor:      actor,
		Status:     "success",
		Target:     target,
	}
	if opErr != nil {
		entry.Status = "failure"
		entry.Error = opErr.Error()
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Error("write audit entry", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	return s.store.Query(ctx, q)
}
