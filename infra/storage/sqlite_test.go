package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/payrelay/payrelay/provider"
)

func newTestStore(t *testing.T) *AttemptStore {
	t.Helper()

	store, err := NewAttemptStore(filepath.Join(t.TempDir(), "attempts.db"))
	if err != nil {
		t.Fatalf("Failed to create attempt store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAttemptStore_LogRequestAndOutcome(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	attemptID, err := store.LogRequest(ctx, "IN", provider.FlowCard, "/v1/payments/create/json", map[string]any{
		"amount": 10000,
	})
	if err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}
	if attemptID == 0 {
		t.Fatal("LogRequest should return a non-zero id")
	}

	err = store.LogOutcome(ctx, attemptID, map[string]any{"status": "captured"}, "completed", 120)
	if err != nil {
		t.Fatalf("LogOutcome failed: %v", err)
	}

	var status string
	var processingMs int64
	err = store.db.QueryRow(`SELECT status, processing_ms FROM payment_attempts WHERE id = ?`, attemptID).
		Scan(&status, &processingMs)
	if err != nil {
		t.Fatalf("Failed to read attempt back: %v", err)
	}
	if status != "completed" {
		t.Errorf("Expected status completed, got %q", status)
	}
	if processingMs != 120 {
		t.Errorf("Expected processing_ms 120, got %d", processingMs)
	}
}

func TestAttemptStore_LogError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	attemptID, err := store.LogRequest(ctx, "IN", provider.FlowApplePay, "/v1/payments/create/json", map[string]any{
		"amount": 5000,
	})
	if err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}

	if err := store.LogError(ctx, attemptID, "ORDER_ERROR", "order creation failed with status 400", 80); err != nil {
		t.Fatalf("LogError failed: %v", err)
	}

	var status, errorCode string
	err = store.db.QueryRow(`SELECT status, error_code FROM payment_attempts WHERE id = ?`, attemptID).
		Scan(&status, &errorCode)
	if err != nil {
		t.Fatalf("Failed to read attempt back: %v", err)
	}
	if status != "failed" {
		t.Errorf("Expected status failed, got %q", status)
	}
	if errorCode != "ORDER_ERROR" {
		t.Errorf("Expected error code ORDER_ERROR, got %q", errorCode)
	}
}

func TestAttemptStore_OutcomeForUnknownAttempt(t *testing.T) {
	store := newTestStore(t)

	err := store.LogOutcome(context.Background(), 99999, map[string]any{}, "completed", 10)
	if err == nil {
		t.Error("Expected an error for an unknown attempt id")
	}
}

func TestAttemptStore_SanitizesPersistedBodies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	attemptID, err := store.LogRequest(ctx, "IN", provider.FlowCard, "/v1/payments/create/json", map[string]any{
		"amount": 10000,
		"card": map[string]any{
			"number": "4111111111111111",
			"cvv":    "123",
		},
	})
	if err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}

	var request sql.NullString
	if err := store.db.QueryRow(`SELECT request FROM payment_attempts WHERE id = ?`, attemptID).Scan(&request); err != nil {
		t.Fatalf("Failed to read attempt back: %v", err)
	}

	if strings.Contains(request.String, "4111111111111111") {
		t.Error("Full card numbers must never reach disk")
	}
	if strings.Contains(request.String, `"123"`) {
		t.Error("CVVs must never reach disk")
	}
	if !strings.Contains(request.String, "411111******1111") {
		t.Errorf("Expected masked card number in %q", request.String)
	}
}

func TestAttemptStore_Ping(t *testing.T) {
	store := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping should succeed on an open store: %v", err)
	}
}
