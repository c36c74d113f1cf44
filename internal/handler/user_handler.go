package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cms-backend/internal/model"
	"cms-backend/internal/service"
	"cms-backend/pkg/apierror"
)

// UserHandler exposes super-admin user management.
type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	writeSuccess(w, http.StatusOK, profiles, nil)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Profile(), nil)
}

func (h *UserHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.UpdateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.UpdateRoles(r.Context(), chi.URLParam(r, "userID"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Profile(), nil)
}

func (h *UserHandler) AddMembership(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if payload.CompanyID == 0 {
		writeError(w, apierror.BadRequest("company_id is required", "company_id"))
		return
	}

	if err := h.service.AddMembership(r.Context(), chi.URLParam(r, "userID"), payload.CompanyID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"added": true}, nil)
}

func (h *UserHandler) RemoveMembership(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RemoveMembership(r.Context(), chi.URLParam(r, "userID"), companyID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"removed": true}, nil)
}
