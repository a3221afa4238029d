package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/infra/middle"
	"github.com/payrelay/payrelay/infra/response"
	"github.com/payrelay/payrelay/provider"
)

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	ProcessCardPayment(ctx context.Context, req provider.PaymentRequest) (map[string]any, error)
	ProcessAppPayment(ctx context.Context, req provider.AppPaymentRequest) (map[string]any, error)
	ValidateMerchantSession(ctx context.Context, req provider.SessionRequest) (map[string]any, error)
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// CreatePayment handles card payment requests
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request format")
		return
	}
	if req.IP == "" {
		req.IP = middle.GetClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.Header.Get("User-Agent")
	}
	if req.Referer == "" {
		req.Referer = r.Header.Get("Referer")
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	resp, err := h.paymentService.ProcessCardPayment(ctx, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, resp)
}

// CreateApplePayPayment handles wallet payment requests
func (h *PaymentHandler) CreateApplePayPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.AppPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	resp, err := h.paymentService.ProcessAppPayment(ctx, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, resp)
}

// ValidateAppleMerchant handles Apple Pay merchant session validation
func (h *PaymentHandler) ValidateAppleMerchant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request format")
		return
	}

	session, err := h.paymentService.ValidateMerchantSession(ctx, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, session)
}

// writeServiceError maps service errors to HTTP responses. Gateway
// rejections pass through verbatim with the gateway's own status code so
// the checkout page can act on gateway-specific error codes.
func (h *PaymentHandler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *provider.ValidationError
	var configErr *config.ConfigError
	var orderErr *provider.OrderCreationError
	var paymentErr *provider.PaymentCreationError
	var gatewayErr *provider.GatewayError
	var unparseableErr *provider.UnparseableResponseError

	switch {
	case errors.As(err, &validationErr):
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", validationErr.Error())
	case errors.As(err, &configErr):
		response.Error(w, http.StatusBadRequest, "CONFIG_ERROR", configErr.Error())
	case errors.As(err, &orderErr):
		response.Raw(w, orderErr.StatusCode, orderErr.Payload)
	case errors.As(err, &paymentErr):
		response.Raw(w, paymentErr.StatusCode, paymentErr.Payload)
	case errors.As(err, &gatewayErr):
		response.Error(w, http.StatusBadGateway, "GATEWAY_UNREACHABLE", "Payment gateway is unreachable")
	case errors.As(err, &unparseableErr):
		response.ErrorWithRaw(w, http.StatusInternalServerError, "UNPARSEABLE_RESPONSE",
			"Payment gateway returned an unrecognized response", unparseableErr.RawBody)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment processing failed")
	}
}
