package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error object every failure response carries.
type ErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Raw         string `json:"raw,omitempty"`
}

// ErrorResponse is the standardized failure envelope:
// {"error":{"code":...,"description":...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// Error writes a standardized error response.
func Error(w http.ResponseWriter, statusCode int, code, description string) {
	_ = WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorBody{Code: code, Description: description},
	})
}

// ErrorWithRaw writes an error response carrying a truncated raw gateway
// body for diagnostics. Callers must ensure the snippet holds no secrets.
func ErrorWithRaw(w http.ResponseWriter, statusCode int, code, description, raw string) {
	_ = WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorBody{Code: code, Description: description, Raw: raw},
	})
}

// Raw passes a gateway payload through verbatim with its original status
// code, so callers can inspect gateway-specific error codes unchanged.
func Raw(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if len(body) == 0 {
		_, _ = w.Write([]byte("{}"))
		return
	}
	_, _ = w.Write(body)
}
