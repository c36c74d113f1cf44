package handler

import (
	"encoding/json"
	"net/http"

	"cms-backend/internal/model"
	"cms-backend/internal/service"
	"cms-backend/pkg/apierror"
)

type CountryHandler struct {
	service *service.CountryService
}

func NewCountryHandler(service *service.CountryService) *CountryHandler {
	return &CountryHandler{service: service}
}

func (h *CountryHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CountryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	country, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, country, nil)
}

func (h *CountryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "countryID")
	if err != nil {
		writeError(w, err)
		return
	}

	country, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, country, nil)
}

func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, countries, nil)
}

func (h *CountryHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := pathID(r, "countryID")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CountryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	country, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, country, nil)
}

func (h *CountryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "countryID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
