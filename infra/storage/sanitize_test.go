package storage

import (
	"testing"
)

func TestSanitizeForLog(t *testing.T) {
	data := map[string]any{
		"amount":   10000,
		"currency": "INR",
		"card": map[string]any{
			"number": "4111111111111111",
			"name":   "Test User",
			"cvv":    "123",
		},
		"key_secret":    "super_secret",
		"authorization": "Basic abc123",
		"items": []any{
			map[string]any{"cardNumber": "5528790000000008"},
		},
	}

	sanitized := SanitizeForLog(data)

	if sanitized["amount"] != 10000 {
		t.Error("Non-sensitive fields should pass through")
	}

	card, ok := sanitized["card"].(map[string]any)
	if !ok {
		t.Fatal("Nested maps should be preserved")
	}
	if card["number"] != "411111******1111" {
		t.Errorf("Card number should be masked, got %v", card["number"])
	}
	if card["cvv"] != "***" {
		t.Errorf("CVV must be fully masked, got %v", card["cvv"])
	}
	if card["name"] != "Test User" {
		t.Error("Cardholder name should pass through")
	}

	if sanitized["key_secret"] != "***" {
		t.Errorf("Secrets must be fully masked, got %v", sanitized["key_secret"])
	}
	if sanitized["authorization"] != "***" {
		t.Errorf("Authorization must be fully masked, got %v", sanitized["authorization"])
	}

	items, _ := sanitized["items"].([]any)
	if len(items) != 1 {
		t.Fatal("Slices should be preserved")
	}
	item, _ := items[0].(map[string]any)
	if item["cardNumber"] != "552879******0008" {
		t.Errorf("Card numbers in slices should be masked, got %v", item["cardNumber"])
	}
}

func TestSanitizeForLog_DoesNotMutateInput(t *testing.T) {
	data := map[string]any{"cvv": "123"}

	_ = SanitizeForLog(data)

	if data["cvv"] != "123" {
		t.Error("Sanitization must not mutate the input")
	}
}

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"Standard PAN", "4111111111111111", "411111******1111"},
		{"PAN with spaces", "4111 1111 1111 1111", "411111******1111"},
		{"Too short to mask partially", "41111111", "***"},
		{"Empty", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskCardNumber(tt.input); got != tt.expect {
				t.Errorf("Expected %q, got %q", tt.expect, got)
			}
		})
	}
}
