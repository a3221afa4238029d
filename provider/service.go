package provider

import (
	"context"
	"time"

	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/infra/logger"
)

const (
	// Placeholder contact details the gateway requires on wallet payments
	// when the checkout page collected none.
	defaultAppContact = "+919999999999"
	defaultAppEmail   = "void@razorpay.com"

	applePayWallet = "applepay"

	// sessionIdentifierField must be present in a merchant session blob for
	// it to be usable by the wallet SDK.
	sessionIdentifierField = "merchantSessionIdentifier"
)

// Gateway abstracts the two payment-creation calls plus the wallet merchant
// session call. The production implementation lives in provider/razorpay.
type Gateway interface {
	CreateOrder(ctx context.Context, region config.RegionConfig, req OrderRequest) (*OrderResult, error)
	CreatePayment(ctx context.Context, region config.RegionConfig, payload map[string]any) (*RawPaymentResponse, error)
	ValidateMerchantSession(ctx context.Context, req SessionRequest) (map[string]any, error)
}

// PaymentService orchestrates payment flows: resolve credentials, create the
// order, create the payment, normalize the outcome. The two gateway calls
// are strictly sequential; a failure at any step short-circuits the flow.
// No step is ever retried.
type PaymentService struct {
	regions  *config.Regions
	gateway  Gateway
	attempts AttemptLogger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(regions *config.Regions, gateway Gateway, attempts AttemptLogger) *PaymentService {
	if attempts == nil {
		attempts = NewNopAttemptLogger()
	}
	return &PaymentService{
		regions:  regions,
		gateway:  gateway,
		attempts: attempts,
	}
}

// ProcessCardPayment runs the card payment flow and returns the response
// body for the checkout page.
func (s *PaymentService) ProcessCardPayment(ctx context.Context, req PaymentRequest) (map[string]any, error) {
	if err := validateCardRequest(req); err != nil {
		return nil, err
	}

	region, err := s.regions.Resolve(req.RegionCode())
	if err != nil {
		return nil, err
	}

	// Compatibility shim for checkout pages sending two-digit expiry years.
	expiryYear := req.Card.ExpiryYear
	if len(expiryYear) == 2 {
		expiryYear = "20" + expiryYear
	}

	startTime := time.Now()
	attemptID := s.logAttempt(ctx, region.Code, FlowCard, req)

	order, err := s.createOrder(ctx, region, req.Amount, req.Currency, attemptID, startTime)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"order_id": order.OrderID,
		"method":   "card",
		"card": map[string]any{
			"number":       req.Card.Number,
			"name":         req.Card.Name,
			"expiry_month": req.Card.ExpiryMonth,
			"expiry_year":  expiryYear,
			"cvv":          req.Card.CVV,
		},
	}
	if req.Contact != "" {
		payload["contact"] = req.Contact
	}
	if req.Email != "" {
		payload["email"] = req.Email
	}
	if req.Authentication != nil {
		payload["authentication"] = req.Authentication
	}
	if req.Browser != nil {
		payload["browser"] = req.Browser
	}
	if req.IP != "" {
		payload["ip"] = req.IP
	}
	if req.Referer != "" {
		payload["referer"] = req.Referer
	}
	if req.UserAgent != "" {
		payload["user_agent"] = req.UserAgent
	}
	if req.DeviceFingerprint != "" {
		payload["device_fingerprint"] = req.DeviceFingerprint
	}

	outcome, err := s.createPayment(ctx, region, payload, attemptID, startTime)
	if err != nil {
		return nil, err
	}

	switch outcome.Kind {
	case OutcomeRedirect:
		// Step-up authentication (3-D Secure / OTP).
		return map[string]any{
			"id":       outcome.PaymentID,
			"status":   "authorized",
			"order_id": order.OrderID,
			"authentication": map[string]any{
				"authentication_url": outcome.RedirectURL,
			},
			"requires_3ds": true,
		}, nil
	default:
		return s.completedResponse(ctx, *outcome, order, attemptID, startTime)
	}
}

// ProcessAppPayment runs the wallet payment flow. Same skeleton as the card
// flow but without card fields; the gateway payload names the wallet.
func (s *PaymentService) ProcessAppPayment(ctx context.Context, req AppPaymentRequest) (map[string]any, error) {
	if err := validateAppRequest(req); err != nil {
		return nil, err
	}

	region, err := s.regions.Resolve(req.RegionCode())
	if err != nil {
		return nil, err
	}

	// Placeholders are substituted only when the caller supplied nothing;
	// a caller-provided value is never overwritten.
	contact := req.Contact
	if contact == "" {
		contact = defaultAppContact
	}
	email := req.Email
	if email == "" {
		email = defaultAppEmail
	}

	startTime := time.Now()
	attemptID := s.logAttempt(ctx, region.Code, FlowApplePay, req)

	order, err := s.createOrder(ctx, region, req.Amount, req.Currency, attemptID, startTime)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"order_id": order.OrderID,
		"contact":  contact,
		"email":    email,
		"method":   "wallet",
		"wallet":   applePayWallet,
	}

	outcome, err := s.createPayment(ctx, region, payload, attemptID, startTime)
	if err != nil {
		return nil, err
	}

	switch outcome.Kind {
	case OutcomeRedirect:
		// Hosted wallet page flow.
		return map[string]any{
			"id":                 outcome.PaymentID,
			"status":             "created",
			"order_id":           order.OrderID,
			"apple_pay_url":      outcome.RedirectURL,
			"requires_apple_pay": true,
			"message":            "Complete the payment on the Apple Pay page",
		}, nil
	default:
		return s.completedResponse(ctx, *outcome, order, attemptID, startTime)
	}
}

// ValidateMerchantSession obtains the opaque merchant session blob certain
// wallet SDKs require before a payment can be attempted. No order is
// created; the blob is passed through unmodified.
func (s *PaymentService) ValidateMerchantSession(ctx context.Context, req SessionRequest) (map[string]any, error) {
	if req.ValidationURL == "" {
		return nil, NewValidationError("validationURL", "validation URL is required")
	}
	if req.Domain == "" {
		return nil, NewValidationError("domain", "domain is required")
	}

	startTime := time.Now()
	attemptID := s.logAttempt(ctx, "", FlowSession, req)

	session, err := s.gateway.ValidateMerchantSession(ctx, req)
	if err != nil {
		s.logFailure(ctx, attemptID, "SESSION_ERROR", err, startTime)
		return nil, err
	}

	if _, ok := session[sessionIdentifierField]; !ok {
		err := NewValidationError("merchantSession", "gateway response carries no merchant session")
		s.logFailure(ctx, attemptID, "SESSION_INVALID", err, startTime)
		return nil, err
	}

	s.logSuccess(ctx, attemptID, session, "validated", startTime)
	return session, nil
}

func (s *PaymentService) createOrder(ctx context.Context, region config.RegionConfig, amount int64, currency string, attemptID int64, startTime time.Time) (*OrderResult, error) {
	order, err := s.gateway.CreateOrder(ctx, region, OrderRequest{
		Amount:      amount,
		Currency:    currency,
		AutoCapture: true,
	})
	if err != nil {
		s.logFailure(ctx, attemptID, "ORDER_ERROR", err, startTime)
		return nil, err
	}
	return order, nil
}

func (s *PaymentService) createPayment(ctx context.Context, region config.RegionConfig, payload map[string]any, attemptID int64, startTime time.Time) (*NormalizedOutcome, error) {
	raw, err := s.gateway.CreatePayment(ctx, region, payload)
	if err != nil {
		s.logFailure(ctx, attemptID, "PAYMENT_ERROR", err, startTime)
		return nil, err
	}

	outcome := Normalize(raw)
	return &outcome, nil
}

// completedResponse resolves the non-redirect outcomes: a well-formed JSON
// result passes through merged with the order, anything else surfaces the
// gateway's status.
func (s *PaymentService) completedResponse(ctx context.Context, outcome NormalizedOutcome, order *OrderResult, attemptID int64, startTime time.Time) (map[string]any, error) {
	switch outcome.Kind {
	case OutcomeCompleted:
		if outcome.StatusCode >= 200 && outcome.StatusCode < 300 {
			merged := make(map[string]any, len(outcome.Payload)+1)
			for k, v := range outcome.Payload {
				merged[k] = v
			}
			merged["order"] = order.Payload
			s.logSuccess(ctx, attemptID, merged, string(OutcomeCompleted), startTime)
			return merged, nil
		}
		err := &PaymentCreationError{
			StatusCode: outcome.StatusCode,
			Payload:    mustJSON(outcome.Payload),
		}
		s.logFailure(ctx, attemptID, "PAYMENT_REJECTED", err, startTime)
		return nil, err
	default:
		err := &UnparseableResponseError{
			StatusCode: outcome.StatusCode,
			RawBody:    outcome.RawBody,
		}
		s.logFailure(ctx, attemptID, "UNPARSEABLE_RESPONSE", err, startTime)
		return nil, err
	}
}

func (s *PaymentService) logAttempt(ctx context.Context, region string, flow Flow, request any) int64 {
	attemptID, err := s.attempts.LogRequest(ctx, region, flow, "/v1/payments/create/json", request)
	if err != nil {
		logger.Warn("Failed to log payment attempt", logger.LogContext{
			Region: region,
			Fields: map[string]any{"flow": flow, "error": err.Error()},
		})
	}
	return attemptID
}

func (s *PaymentService) logSuccess(ctx context.Context, attemptID int64, outcome any, status string, startTime time.Time) {
	if attemptID == 0 {
		return
	}
	if err := s.attempts.LogOutcome(ctx, attemptID, outcome, status, time.Since(startTime).Milliseconds()); err != nil {
		logger.Warn("Failed to log payment outcome", logger.LogContext{
			Fields: map[string]any{"attempt_id": attemptID, "error": err.Error()},
		})
	}
}

func (s *PaymentService) logFailure(ctx context.Context, attemptID int64, code string, cause error, startTime time.Time) {
	if attemptID == 0 {
		return
	}
	if err := s.attempts.LogError(ctx, attemptID, code, cause.Error(), time.Since(startTime).Milliseconds()); err != nil {
		logger.Warn("Failed to log payment error", logger.LogContext{
			Fields: map[string]any{"attempt_id": attemptID, "error": err.Error()},
		})
	}
}

func validateCardRequest(req PaymentRequest) error {
	if req.Amount <= 0 {
		return NewValidationError("amount", "amount must be greater than 0")
	}
	if req.Currency == "" {
		return NewValidationError("currency", "currency is required")
	}
	if req.RegionCode() == "" {
		return NewValidationError("region", "region is required")
	}
	if req.Method == "" {
		return NewValidationError("method", "method is required")
	}
	if req.Card == nil {
		return NewValidationError("card", "card details are required")
	}
	if req.Card.Number == "" {
		return NewValidationError("card.number", "card number is required")
	}
	if req.Card.ExpiryMonth == "" || req.Card.ExpiryYear == "" {
		return NewValidationError("card.expiry", "card expiry month and year are required")
	}
	if req.Card.CVV == "" {
		return NewValidationError("card.cvv", "card CVV is required")
	}
	return nil
}

func validateAppRequest(req AppPaymentRequest) error {
	if req.Amount <= 0 {
		return NewValidationError("amount", "amount must be greater than 0")
	}
	if req.Currency == "" {
		return NewValidationError("currency", "currency is required")
	}
	if req.RegionCode() == "" {
		return NewValidationError("region", "region is required")
	}
	return nil
}
