package handler

import (
	"net/http"

	"cms-backend/internal/middleware"
	"cms-backend/internal/model"
	"cms-backend/internal/service"
)

// AnalyticsHandler serves the dashboard rollup for the caller's active
// company.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	overview, err := h.service.Overview(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, overview, nil)
}
