package provider

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports missing or malformed caller input. It is always
// resolved before any outbound gateway call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError is a transport-level failure talking to the gateway. The
// gateway was never reached or the connection broke mid-call.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway unreachable during %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// OrderCreationError means the gateway rejected order creation. Status code
// and payload are carried verbatim so the caller can inspect the gateway's
// own error codes. Order creation is never retried; a duplicate submission
// could double-create an order.
type OrderCreationError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed with status %d", e.StatusCode)
}

// PaymentCreationError means the gateway rejected payment creation and no
// redirect or terminal result could be extracted from the response.
type PaymentCreationError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *PaymentCreationError) Error() string {
	return fmt.Sprintf("payment creation failed with status %d", e.StatusCode)
}

// UnparseableResponseError means the payment-creation response matched none
// of the recognized shapes. RawBody is truncated for diagnostics and never
// contains credentials.
type UnparseableResponseError struct {
	StatusCode int
	RawBody    string
}

func (e *UnparseableResponseError) Error() string {
	return fmt.Sprintf("unrecognized gateway response with status %d", e.StatusCode)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
