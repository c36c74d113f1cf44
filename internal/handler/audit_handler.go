package handler

import (
	"net/http"

	"cms-backend/internal/model"
	"cms-backend/internal/service"
)

// AuditHandler exposes the audit trail to super admins.
type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := model.AuditQuery{
		Action:  r.URL.Query().Get("action"),
		Status:  r.URL.Query().Get("status"),
		ActorID: r.URL.Query().Get("actor_id"),
		Page:    queryInt(r, "page", 1),
		Limit:   queryInt(r, "limit", 20),
	}

	entries, total, err := h.service.Query(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := total / q.Limit
	if total%q.Limit != 0 {
		totalPages++
	}

	writeSuccess(w, http.StatusOK, entries, &model.Meta{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}
