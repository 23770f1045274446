package web

// errors.go provides unified error response handling for the web
// layer. Technical details are logged server-side with the request ID;
// clients get a sanitized JSON message.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/staffdesk/cvimport/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError logs the full message server-side and returns a sanitized
// version to the client.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: sanitizeErrorMessage(message)})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}

// sanitizeErrorMessage strips connection strings and other internals
// that must not leak to clients, and keeps messages to one line.
func sanitizeErrorMessage(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	lower := strings.ToLower(message)
	for _, secret := range []string{"postgres://", "password", "connection refused", "dial tcp"} {
		if strings.Contains(lower, secret) {
			return "internal error"
		}
	}
	const maxLen = 200
	if len(message) > maxLen {
		message = message[:maxLen] + "..."
	}
	return message
}
