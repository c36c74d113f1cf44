package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"cms-backend/internal/middleware"
	"cms-backend/internal/model"
	"cms-backend/internal/service"
	"cms-backend/pkg/apierror"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	service    *service.AuthService
	refreshTTL time.Duration
}

func NewAuthHandler(service *service.AuthService, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: service, refreshTTL: refreshTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeSuccess(w, http.StatusCreated, result, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeSuccess(w, http.StatusOK, result, nil)
}

// Refresh reads the refresh token from its cookie, never from the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, model.ErrTokenMissing)
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) SwitchCompany(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.SwitchCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if payload.CompanyID == 0 {
		writeError(w, apierror.BadRequest("company_id is required", "company_id"))
		return
	}

	result, err := h.service.SwitchCompany(r.Context(), principal.User.Username, payload.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.Profile(r.Context(), principal.User.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	companies := make([]model.CompanySummary, 0, len(user.Companies))
	for _, c := range user.Companies {
		companies = append(companies, c.Summary())
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"profile":           user.Profile(),
		"companies":         companies,
		"active_company_id": principal.Claims.CompanyID,
	}, nil)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
