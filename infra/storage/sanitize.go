package storage

import "strings"

// SanitizeForLog removes sensitive information from data before logging.
func SanitizeForLog(data map[string]any) map[string]any {
	result := sanitizeRecursive(data)
	if sanitizedMap, ok := result.(map[string]any); ok {
		return sanitizedMap
	}
	return data
}

func sanitizeRecursive(data any) any {
	switch v := data.(type) {
	case map[string]any:
		return sanitizeMap(v)
	case []any:
		return sanitizeSlice(v)
	default:
		return v
	}
}

func sanitizeMap(data map[string]any) map[string]any {
	sanitized := make(map[string]any, len(data))

	for key, value := range data {
		keyLower := strings.ToLower(key)

		switch {
		case isCardNumberField(keyLower):
			if s, ok := value.(string); ok {
				sanitized[key] = maskCardNumber(s)
			} else {
				sanitized[key] = "***"
			}
		case isSecretField(keyLower):
			sanitized[key] = "***"
		default:
			sanitized[key] = sanitizeRecursive(value)
		}
	}

	return sanitized
}

func sanitizeSlice(data []any) []any {
	sanitized := make([]any, len(data))
	for i, item := range data {
		sanitized[i] = sanitizeRecursive(item)
	}
	return sanitized
}

func isCardNumberField(key string) bool {
	return strings.Contains(key, "number") && !strings.Contains(key, "order") ||
		strings.Contains(key, "cardnumber") || strings.Contains(key, "card_number") ||
		strings.Contains(key, "pan")
}

func isSecretField(key string) bool {
	patterns := []string{"cvv", "cvc", "secret", "password", "authorization", "key_secret"}
	for _, pattern := range patterns {
		if strings.Contains(key, pattern) {
			return true
		}
	}
	return false
}

// maskCardNumber keeps the first six and last four digits visible.
func maskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	if len(digits) < 12 {
		return "***"
	}
	return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
}
