package handlers

import (
	"encoding/json"
	"net/http"
)

// apiError is the wire shape of every error the API returns: a stable
// machine-readable code plus a human-readable message.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorResponse writes an apiError with the given status code.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(apiError{Error: errorCode, Message: message})
}

// WriteJSON encodes data as the JSON response body. The status line
// is only written explicitly for non-200 codes.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
