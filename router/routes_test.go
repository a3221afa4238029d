package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/payrelay/payrelay/handler"
	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/provider"
	"github.com/stretchr/testify/assert"
)

type stubPaymentService struct{}

func (stubPaymentService) ProcessCardPayment(ctx context.Context, req provider.PaymentRequest) (map[string]any, error) {
	return map[string]any{"status": "captured"}, nil
}

func (stubPaymentService) ProcessAppPayment(ctx context.Context, req provider.AppPaymentRequest) (map[string]any, error) {
	return map[string]any{"status": "created"}, nil
}

func (stubPaymentService) ValidateMerchantSession(ctx context.Context, req provider.SessionRequest) (map[string]any, error) {
	return map[string]any{"merchantSessionIdentifier": "mid_1"}, nil
}

func newTestRouter() *chi.Mux {
	regions := config.NewRegions(config.RegionConfig{Code: "IN", KeyID: "k", KeySecret: "s"})
	paymentHandler := handler.NewPaymentHandler(stubPaymentService{}, validator.New())
	healthHandler := handler.NewHealthHandler(regions, nil, nil)

	r := chi.NewRouter()
	Routes(r, paymentHandler, healthHandler)
	return r
}

func TestRoutes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectStatus int
	}{
		{
			name:         "Card payment endpoint",
			method:       http.MethodPost,
			path:         "/api/create-payment",
			body:         `{"amount":10000,"currency":"INR","region":"IN","method":"card","card":{"number":"4111111111111111","expiry_month":"12","expiry_year":"2030","cvv":"123"}}`,
			expectStatus: http.StatusOK,
		},
		{
			name:         "Apple Pay payment endpoint",
			method:       http.MethodPost,
			path:         "/api/create-applepay-payment",
			body:         `{"amount":5000,"currency":"INR","region":"IN"}`,
			expectStatus: http.StatusOK,
		},
		{
			name:         "Merchant validation endpoint",
			method:       http.MethodPost,
			path:         "/api/validate-apple-merchant",
			body:         `{"validationURL":"https://apple-pay-gateway.apple.com/session","domain":"shop.example.com"}`,
			expectStatus: http.StatusOK,
		},
		{
			name:         "Health endpoint",
			method:       http.MethodGet,
			path:         "/health",
			expectStatus: http.StatusOK,
		},
		{
			name:         "Payment endpoints reject GET",
			method:       http.MethodGet,
			path:         "/api/create-payment",
			expectStatus: http.StatusMethodNotAllowed,
		},
		{
			name:         "Unknown route",
			method:       http.MethodGet,
			path:         "/api/unknown",
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code, "body: %s", w.Body.String())
		})
	}
}
