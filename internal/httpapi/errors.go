package httpapi

import (
	"encoding/json"
	"net/http"

	"gighunt-engine/internal/config"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		Details   any    `json:"details,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeAPIError(w, r, status, code, message, nil)
}

// WriteValidation reports a rejected config with the full validation result
// as details.
func WriteValidation(w http.ResponseWriter, r *http.Request, v config.Validation) {
	writeAPIError(w, r, http.StatusBadRequest, "invalid_config", "config validation failed", v)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Details = details
	WriteJSON(w, status, e)
}
