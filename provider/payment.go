package provider

import "strings"

// Flow identifies which payment flow produced an attempt.
type Flow string

const (
	FlowCard     Flow = "card"
	FlowApplePay Flow = "applepay"
	FlowSession  Flow = "merchant_session"
)

// CardDetails represents the card fields supplied by the checkout page.
type CardDetails struct {
	Number      string `json:"number"`
	Name        string `json:"name,omitempty"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// PaymentRequest is the inbound card payment request.
//
// Optional risk, authentication and browser metadata must only be forwarded
// to the gateway when the caller supplied them; absent fields are never sent
// as null or empty values.
type PaymentRequest struct {
	Amount            int64          `json:"amount" validate:"required,gt=0"`
	Currency          string         `json:"currency" validate:"required"`
	Region            string         `json:"region,omitempty"`
	Country           string         `json:"country,omitempty"`
	Contact           string         `json:"contact,omitempty"`
	Email             string         `json:"email,omitempty"`
	Method            string         `json:"method" validate:"required"`
	Card              *CardDetails   `json:"card,omitempty"`
	Authentication    map[string]any `json:"authentication,omitempty"`
	Browser           map[string]any `json:"browser,omitempty"`
	IP                string         `json:"ip,omitempty"`
	Referer           string         `json:"referer,omitempty"`
	UserAgent         string         `json:"user_agent,omitempty"`
	DeviceFingerprint string         `json:"device_fingerprint,omitempty"`
}

// RegionCode returns the region the caller addressed, accepting the legacy
// "country" field name used by older checkout pages.
func (r PaymentRequest) RegionCode() string {
	if r.Region != "" {
		return strings.ToUpper(r.Region)
	}
	return strings.ToUpper(r.Country)
}

// AppPaymentRequest is the inbound wallet/app payment request.
type AppPaymentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
}

// RegionCode returns the region the caller addressed.
func (r AppPaymentRequest) RegionCode() string {
	if r.Region != "" {
		return strings.ToUpper(r.Region)
	}
	return strings.ToUpper(r.Country)
}

// SessionRequest asks for an Apple Pay merchant session blob.
type SessionRequest struct {
	ValidationURL string `json:"validationURL" validate:"required,url"`
	Domain        string `json:"domain" validate:"required"`
	DisplayName   string `json:"displayName,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// OrderRequest contains what the gateway needs to create an order.
// Amount is in the smallest currency unit.
type OrderRequest struct {
	Amount      int64
	Currency    string
	AutoCapture bool
}

// OrderResult is the gateway's record of a created order. It lives for a
// single payment attempt and is consumed immediately by payment creation.
type OrderResult struct {
	OrderID string
	Payload map[string]any
}

// RawPaymentResponse is the payment-creation response exactly as the gateway
// returned it. Interpretation is the normalizer's job; the client never
// inspects it.
type RawPaymentResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OutcomeKind tags a NormalizedOutcome variant.
type OutcomeKind string

const (
	// OutcomeCompleted is a terminal payment result returned synchronously.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeRedirect means the browser must navigate to a gateway URL,
	// either for step-up authentication or a hosted wallet page.
	OutcomeRedirect OutcomeKind = "redirect"
	// OutcomeUnparseable means no recognized JSON shape and no extractable
	// redirect was found in the response.
	OutcomeUnparseable OutcomeKind = "unparseable"
)

// NormalizedOutcome is the unified representation of a payment-creation
// response, independent of the transport shape the gateway chose.
type NormalizedOutcome struct {
	Kind        OutcomeKind
	StatusCode  int
	Payload     map[string]any // set for OutcomeCompleted
	PaymentID   string         // set for OutcomeRedirect
	RedirectURL string         // set for OutcomeRedirect
	RawBody     string         // set for OutcomeUnparseable, truncated
}
