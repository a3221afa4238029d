package provider

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// maxRawBodyLen bounds the diagnostic body snippet on unparseable
	// responses.
	maxRawBodyLen = 300

	// unknownPaymentID is used when a legacy redirect document carries no
	// extractable payment identifier.
	unknownPaymentID = "unknown"
)

var paymentIDKeyPattern = regexp.MustCompile(`razorpay_payment_id["']?\s*[:=]\s*["']?(pay_[A-Za-z0-9]+)`)

// Normalize converts a raw payment-creation response into a single outcome,
// regardless of which physical transport shape the gateway produced. It is a
// pure function: the same input always yields the same outcome.
//
// Redirect extraction deliberately takes precedence over the HTTP status:
// step-up responses may carry a non-2xx status alongside a perfectly usable
// redirect URL. Only when nothing can be extracted does the raw status
// matter, and that call belongs to the caller.
func Normalize(raw *RawPaymentResponse) NormalizedOutcome {
	if isJSONContentType(raw.ContentType) {
		var body map[string]any
		if err := json.Unmarshal(raw.Body, &body); err == nil {
			if url, ok := redirectFromJSON(body); ok {
				return NormalizedOutcome{
					Kind:        OutcomeRedirect,
					StatusCode:  raw.StatusCode,
					PaymentID:   stringField(body, "razorpay_payment_id"),
					RedirectURL: url,
				}
			}
			return NormalizedOutcome{
				Kind:       OutcomeCompleted,
				StatusCode: raw.StatusCode,
				Payload:    body,
			}
		}
		// Declared JSON but unparseable as such; fall through to the
		// legacy document path.
	}

	// Legacy path: the gateway historically answers with an HTML document
	// containing a meta-refresh redirect when step-up authentication or a
	// hosted wallet page is required.
	doc := string(raw.Body)
	if url, ok := redirectFromDocument(doc); ok {
		return NormalizedOutcome{
			Kind:        OutcomeRedirect,
			StatusCode:  raw.StatusCode,
			PaymentID:   paymentIDFromRedirect(url, doc),
			RedirectURL: url,
		}
	}

	return NormalizedOutcome{
		Kind:       OutcomeUnparseable,
		StatusCode: raw.StatusCode,
		RawBody:    truncate(doc, maxRawBodyLen),
	}
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// redirectFromJSON scans the "next" action list for a redirect instruction
// with a non-empty URL.
func redirectFromJSON(body map[string]any) (string, bool) {
	next, ok := body["next"].([]any)
	if !ok {
		return "", false
	}
	for _, entry := range next {
		action, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if stringField(action, "action") != "redirect" {
			continue
		}
		if url := stringField(action, "url"); url != "" {
			return url, true
		}
	}
	return "", false
}

// redirectFromDocument extracts the target of a "url=" parameter pattern
// from a meta-refresh document.
func redirectFromDocument(doc string) (string, bool) {
	idx := strings.Index(doc, "url=")
	if idx == -1 {
		return "", false
	}
	url := doc[idx+len("url="):]
	url = strings.Trim(url, `"'`)
	if end := strings.IndexAny(url, `"'<> `+"\t\r\n"); end != -1 {
		url = url[:end]
	}
	if url == "" {
		return "", false
	}
	return url, true
}

// paymentIDFromRedirect pulls the payment identifier out of a redirect URL's
// "payments/" path segment, falling back to a razorpay_payment_id key in the
// surrounding document, then to the unknown sentinel.
func paymentIDFromRedirect(url, doc string) string {
	if idx := strings.Index(url, "payments/"); idx != -1 {
		id := url[idx+len("payments/"):]
		if end := strings.IndexAny(id, "/?&#"); end != -1 {
			id = id[:end]
		}
		if id != "" {
			return id
		}
	}
	if m := paymentIDKeyPattern.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return unknownPaymentID
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
