package middleware

import (
	"encoding/json"
	"net/http"

	"cms-backend/internal/model"
)

// writeJSONError emits the standard response envelope for failures raised
// inside the middleware chain, before any handler runs.
func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
