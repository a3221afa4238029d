package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/payrelay/payrelay/infra/config"
)

// fakeGateway records calls and plays back scripted responses.
type fakeGateway struct {
	orderResult    *OrderResult
	orderErr       error
	paymentResp    *RawPaymentResponse
	paymentErr     error
	session        map[string]any
	sessionErr     error
	orderCalls     int
	paymentCalls   int
	lastPayload    map[string]any
	lastOrderReq   OrderRequest
	lastRegionCode string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, region config.RegionConfig, req OrderRequest) (*OrderResult, error) {
	g.orderCalls++
	g.lastOrderReq = req
	g.lastRegionCode = region.Code
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	if g.orderResult != nil {
		return g.orderResult, nil
	}
	return &OrderResult{OrderID: "order_test1", Payload: map[string]any{"id": "order_test1"}}, nil
}

func (g *fakeGateway) CreatePayment(ctx context.Context, region config.RegionConfig, payload map[string]any) (*RawPaymentResponse, error) {
	g.paymentCalls++
	g.lastPayload = payload
	if g.paymentErr != nil {
		return nil, g.paymentErr
	}
	if g.paymentResp != nil {
		return g.paymentResp, nil
	}
	return &RawPaymentResponse{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        []byte(`{"razorpay_payment_id":"pay_test1","status":"captured"}`),
	}, nil
}

func (g *fakeGateway) ValidateMerchantSession(ctx context.Context, req SessionRequest) (map[string]any, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return g.session, nil
}

func testRegions() *config.Regions {
	return config.NewRegions(
		config.RegionConfig{Code: "IN", KeyID: "rzp_test_key", KeySecret: "test_secret"},
		config.RegionConfig{Code: "AE", KeyID: "", KeySecret: ""},
	)
}

func validCardRequest() PaymentRequest {
	return PaymentRequest{
		Amount:   10000,
		Currency: "INR",
		Region:   "IN",
		Method:   "card",
		Card: &CardDetails{
			Number:      "4111111111111111",
			Name:        "Test User",
			ExpiryMonth: "12",
			ExpiryYear:  "2030",
			CVV:         "123",
		},
	}
}

func TestProcessCardPayment_Completed(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	resp, err := service.ProcessCardPayment(context.Background(), validCardRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gateway.orderCalls != 1 || gateway.paymentCalls != 1 {
		t.Errorf("Expected exactly one order and one payment call, got %d/%d", gateway.orderCalls, gateway.paymentCalls)
	}
	if !gateway.lastOrderReq.AutoCapture {
		t.Error("Orders should request automatic capture")
	}
	if resp["razorpay_payment_id"] != "pay_test1" {
		t.Errorf("Gateway payload should pass through, got %v", resp["razorpay_payment_id"])
	}
	if _, ok := resp["order"]; !ok {
		t.Error("Completed responses should carry the order payload under 'order'")
	}
}

func TestProcessCardPayment_TwoDigitExpiryYear(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	req := validCardRequest()
	req.Card.ExpiryYear = "27"

	if _, err := service.ProcessCardPayment(context.Background(), req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	card, ok := gateway.lastPayload["card"].(map[string]any)
	if !ok {
		t.Fatal("Payment payload should carry a card object")
	}
	if card["expiry_year"] != "2027" {
		t.Errorf("Two-digit year should become 2027, got %v", card["expiry_year"])
	}
}

func TestProcessCardPayment_OptionalFieldsOmitted(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	if _, err := service.ProcessCardPayment(context.Background(), validCardRequest()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, key := range []string{"contact", "email", "authentication", "browser", "ip", "referer", "user_agent", "device_fingerprint"} {
		if _, present := gateway.lastPayload[key]; present {
			t.Errorf("Absent optional field %q must not be sent", key)
		}
	}
}

func TestProcessCardPayment_Redirect(t *testing.T) {
	gateway := &fakeGateway{
		paymentResp: &RawPaymentResponse{
			StatusCode:  200,
			ContentType: "application/json",
			Body:        []byte(`{"razorpay_payment_id":"pay_3ds","next":[{"action":"redirect","url":"https://gw.example/3ds"}]}`),
		},
	}
	service := NewPaymentService(testRegions(), gateway, nil)

	resp, err := service.ProcessCardPayment(context.Background(), validCardRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp["status"] != "authorized" {
		t.Errorf("Expected status authorized, got %v", resp["status"])
	}
	if resp["requires_3ds"] != true {
		t.Error("Redirect responses should set requires_3ds")
	}
	auth, ok := resp["authentication"].(map[string]any)
	if !ok || auth["authentication_url"] != "https://gw.example/3ds" {
		t.Errorf("Expected authentication_url, got %v", resp["authentication"])
	}
}

func TestProcessCardPayment_ValidationErrors(t *testing.T) {
	service := NewPaymentService(testRegions(), &fakeGateway{}, nil)

	tests := []struct {
		name   string
		mutate func(*PaymentRequest)
		substr string
	}{
		{"Missing amount", func(r *PaymentRequest) { r.Amount = 0 }, "amount"},
		{"Missing currency", func(r *PaymentRequest) { r.Currency = "" }, "currency"},
		{"Missing region", func(r *PaymentRequest) { r.Region = "" }, "region"},
		{"Missing card", func(r *PaymentRequest) { r.Card = nil }, "card"},
		{"Missing CVV", func(r *PaymentRequest) { r.Card.CVV = "" }, "CVV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCardRequest()
			tt.mutate(&req)

			_, err := service.ProcessCardPayment(context.Background(), req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error %q should mention %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestProcessCardPayment_UnconfiguredRegion(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	req := validCardRequest()
	req.Region = "AE"

	_, err := service.ProcessCardPayment(context.Background(), req)

	var configErr *config.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if gateway.orderCalls != 0 {
		t.Error("No gateway call may happen for an unconfigured region")
	}
}

func TestProcessCardPayment_OrderFailureStopsFlow(t *testing.T) {
	gateway := &fakeGateway{
		orderErr: &OrderCreationError{StatusCode: 400, Payload: []byte(`{"error":{"code":"BAD_REQUEST_ERROR"}}`)},
	}
	service := NewPaymentService(testRegions(), gateway, nil)

	_, err := service.ProcessCardPayment(context.Background(), validCardRequest())

	var orderErr *OrderCreationError
	if !errors.As(err, &orderErr) {
		t.Fatalf("Expected OrderCreationError, got %v", err)
	}
	if gateway.paymentCalls != 0 {
		t.Error("Payment creation must not run after a failed order")
	}
	if gateway.orderCalls != 1 {
		t.Errorf("Order creation must not be retried, got %d calls", gateway.orderCalls)
	}
}

func TestProcessCardPayment_GatewayRejection(t *testing.T) {
	gateway := &fakeGateway{
		paymentResp: &RawPaymentResponse{
			StatusCode:  400,
			ContentType: "application/json",
			Body:        []byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Card declined"}}`),
		},
	}
	service := NewPaymentService(testRegions(), gateway, nil)

	_, err := service.ProcessCardPayment(context.Background(), validCardRequest())

	var paymentErr *PaymentCreationError
	if !errors.As(err, &paymentErr) {
		t.Fatalf("Expected PaymentCreationError, got %v", err)
	}
	if paymentErr.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", paymentErr.StatusCode)
	}
	if !strings.Contains(string(paymentErr.Payload), "BAD_REQUEST_ERROR") {
		t.Error("Gateway payload should pass through verbatim")
	}
}

func TestProcessCardPayment_UnparseableResponse(t *testing.T) {
	gateway := &fakeGateway{
		paymentResp: &RawPaymentResponse{
			StatusCode:  502,
			ContentType: "text/plain",
			Body:        []byte("upstream exploded"),
		},
	}
	service := NewPaymentService(testRegions(), gateway, nil)

	_, err := service.ProcessCardPayment(context.Background(), validCardRequest())

	var unparseableErr *UnparseableResponseError
	if !errors.As(err, &unparseableErr) {
		t.Fatalf("Expected UnparseableResponseError, got %v", err)
	}
	if unparseableErr.RawBody != "upstream exploded" {
		t.Errorf("Expected diagnostic body, got %q", unparseableErr.RawBody)
	}
}

func TestProcessAppPayment_Placeholders(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	_, err := service.ProcessAppPayment(context.Background(), AppPaymentRequest{
		Amount:   5000,
		Currency: "INR",
		Region:   "IN",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gateway.lastPayload["contact"] != defaultAppContact {
		t.Errorf("Expected placeholder contact, got %v", gateway.lastPayload["contact"])
	}
	if gateway.lastPayload["email"] != defaultAppEmail {
		t.Errorf("Expected placeholder email, got %v", gateway.lastPayload["email"])
	}
	if gateway.lastPayload["method"] != "wallet" || gateway.lastPayload["wallet"] != applePayWallet {
		t.Error("Wallet payloads should name the applepay wallet")
	}
}

func TestProcessAppPayment_CallerContactPreserved(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewPaymentService(testRegions(), gateway, nil)

	_, err := service.ProcessAppPayment(context.Background(), AppPaymentRequest{
		Amount:   5000,
		Currency: "INR",
		Region:   "IN",
		Contact:  "+14155550100",
		Email:    "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gateway.lastPayload["contact"] != "+14155550100" {
		t.Errorf("Caller contact must not be overwritten, got %v", gateway.lastPayload["contact"])
	}
	if gateway.lastPayload["email"] != "buyer@example.com" {
		t.Errorf("Caller email must not be overwritten, got %v", gateway.lastPayload["email"])
	}
}

func TestProcessAppPayment_Redirect(t *testing.T) {
	gateway := &fakeGateway{
		paymentResp: &RawPaymentResponse{
			StatusCode:  200,
			ContentType: "text/html",
			Body:        []byte(`<meta http-equiv="refresh" content="0;url=https://gw.example/payments/pay_w1/hosted">`),
		},
	}
	service := NewPaymentService(testRegions(), gateway, nil)

	resp, err := service.ProcessAppPayment(context.Background(), AppPaymentRequest{
		Amount:   5000,
		Currency: "INR",
		Region:   "IN",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp["status"] != "created" {
		t.Errorf("Expected status created, got %v", resp["status"])
	}
	if resp["requires_apple_pay"] != true {
		t.Error("Hosted wallet redirects should set requires_apple_pay")
	}
	if resp["apple_pay_url"] != "https://gw.example/payments/pay_w1/hosted" {
		t.Errorf("Expected hosted page URL, got %v", resp["apple_pay_url"])
	}
	if resp["id"] != "pay_w1" {
		t.Errorf("Expected payment id pay_w1, got %v", resp["id"])
	}
}

func TestValidateMerchantSession(t *testing.T) {
	tests := []struct {
		name        string
		req         SessionRequest
		session     map[string]any
		sessionErr  error
		expectError bool
	}{
		{
			name:    "Valid session",
			req:     SessionRequest{ValidationURL: "https://apple-pay-gateway.apple.com/session", Domain: "shop.example.com"},
			session: map[string]any{"merchantSessionIdentifier": "mid_1", "nonce": "n1"},
		},
		{
			name:        "Missing validation URL",
			req:         SessionRequest{Domain: "shop.example.com"},
			expectError: true,
		},
		{
			name:        "Missing domain",
			req:         SessionRequest{ValidationURL: "https://apple-pay-gateway.apple.com/session"},
			expectError: true,
		},
		{
			name:        "Blob without session identifier",
			req:         SessionRequest{ValidationURL: "https://apple-pay-gateway.apple.com/session", Domain: "shop.example.com"},
			session:     map[string]any{"nonce": "n1"},
			expectError: true,
		},
		{
			name:        "Gateway failure",
			req:         SessionRequest{ValidationURL: "https://apple-pay-gateway.apple.com/session", Domain: "shop.example.com"},
			sessionErr:  errors.New("connection refused"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{session: tt.session, sessionErr: tt.sessionErr}
			service := NewPaymentService(testRegions(), gateway, nil)

			session, err := service.ValidateMerchantSession(context.Background(), tt.req)

			if tt.expectError {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if session["merchantSessionIdentifier"] != "mid_1" {
				t.Error("Session blob should pass through unmodified")
			}
		})
	}
}
