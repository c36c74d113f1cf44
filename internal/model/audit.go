package model

import "time"

type AuditActor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Roles    []Role `json:"roles,omitempty"`
	IP       string `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         int64      `json:"id,omitempty"`
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Target     string     `json:"target"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action  string
	Status  string
	ActorID string
	Page    int
	Limit   int
}
