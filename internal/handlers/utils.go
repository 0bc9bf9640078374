package handlers

import (
	"encoding/json"
	"net/http"

	"gallery-admin/internal/logging"
)

// ErrorResponse is the body of every failed admin request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatus writes v with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes {success:false, error, message} with the given status code.
func writeJSONError(w http.ResponseWriter, statusCode int, errMsg, message string) {
	writeJSONStatus(w, statusCode, ErrorResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
	})
}
