package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "BAD_REQUEST", "amount is required")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Error response should be JSON: %v", err)
	}
	if resp.Error.Code != "BAD_REQUEST" {
		t.Errorf("Expected code BAD_REQUEST, got %q", resp.Error.Code)
	}
	if resp.Error.Description != "amount is required" {
		t.Errorf("Expected description, got %q", resp.Error.Description)
	}
	if resp.Error.Raw != "" {
		t.Error("Raw should be absent unless explicitly set")
	}
}

func TestErrorWithRaw(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorWithRaw(w, http.StatusInternalServerError, "UNPARSEABLE_RESPONSE", "unrecognized response", "<html>oops")

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Error response should be JSON: %v", err)
	}
	if resp.Error.Raw != "<html>oops" {
		t.Errorf("Expected raw snippet, got %q", resp.Error.Raw)
	}
}

func TestRaw(t *testing.T) {
	w := httptest.NewRecorder()
	payload := []byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Card declined"}}`)

	Raw(w, http.StatusBadRequest, payload)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if w.Body.String() != string(payload) {
		t.Error("Raw payload must pass through byte-for-byte")
	}
}

func TestRaw_EmptyBody(t *testing.T) {
	w := httptest.NewRecorder()

	Raw(w, http.StatusBadGateway, nil)

	if w.Body.String() != "{}" {
		t.Errorf("Empty bodies should become an empty object, got %q", w.Body.String())
	}
}
