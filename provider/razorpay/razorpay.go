package razorpay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/provider"
)

const (
	// API URLs
	apiProductionURL = "https://api.razorpay.com"

	// API Endpoints
	endpointOrders        = "/v1/orders"
	endpointCreatePayment = "/v1/payments/create/json"

	// Default Values
	defaultTimeout = 30 * time.Second
)

// Client talks to the Razorpay REST API. It authenticates every call with
// HTTP Basic over the region's credential pair and exposes raw decoded
// results; outcome interpretation is the normalizer's job.
type Client struct {
	appleMerchantID string
	http            *provider.GatewayHTTPClient
}

// ClientOptions configures a Client. Zero values fall back to the production
// API URL and the default timeout.
type ClientOptions struct {
	BaseURL         string
	Timeout         time.Duration
	AppleMerchantID string
}

// NewClient creates a new Razorpay gateway client.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = apiProductionURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		appleMerchantID: opts.AppleMerchantID,
		http: provider.NewGatewayHTTPClient(&provider.HTTPClientConfig{
			BaseURL: baseURL,
			Timeout: timeout,
			DefaultHeaders: map[string]string{
				"Accept":     "application/json",
				"User-Agent": "payrelay/1.0",
			},
		}),
	}
}

// CreateOrder registers the intended charge with the gateway. A non-2xx
// status returns the gateway's payload verbatim; the call is never retried
// since a duplicate submission could double-create an order.
func (c *Client) CreateOrder(ctx context.Context, region config.RegionConfig, req provider.OrderRequest) (*provider.OrderResult, error) {
	capture := 0
	if req.AutoCapture {
		capture = 1
	}

	body := map[string]any{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         newReceipt(),
		"payment_capture": capture,
	}

	resp, err := c.http.SendJSON(ctx, &provider.HTTPRequest{
		Method:        http.MethodPost,
		Endpoint:      endpointOrders,
		Body:          body,
		BasicAuthUser: region.KeyID,
		BasicAuthPass: region.KeySecret,
	})
	if err != nil {
		return nil, &provider.GatewayError{Op: "order creation", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.OrderCreationError{
			StatusCode: resp.StatusCode,
			Payload:    resp.Body,
		}
	}

	var payload map[string]any
	if err := c.http.ParseJSONResponse(resp, &payload); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse order response: %w", err)
	}

	orderID, _ := payload["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay: order response carries no order id")
	}

	return &provider.OrderResult{
		OrderID: orderID,
		Payload: payload,
	}, nil
}

// CreatePayment submits the payment against an existing order and returns
// the response verbatim: status code, content type, body bytes. The same raw
// shape recurs for card and wallet payments and is normalized identically
// downstream.
func (c *Client) CreatePayment(ctx context.Context, region config.RegionConfig, payload map[string]any) (*provider.RawPaymentResponse, error) {
	resp, err := c.http.SendJSON(ctx, &provider.HTTPRequest{
		Method:        http.MethodPost,
		Endpoint:      endpointCreatePayment,
		Body:          payload,
		BasicAuthUser: region.KeyID,
		BasicAuthPass: region.KeySecret,
	})
	if err != nil {
		return nil, &provider.GatewayError{Op: "payment creation", Err: err}
	}

	return &provider.RawPaymentResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType(),
		Body:        resp.Body,
	}, nil
}

// ValidateMerchantSession posts the merchant identity to the wallet's
// validation URL and returns the opaque session blob unmodified.
func (c *Client) ValidateMerchantSession(ctx context.Context, req provider.SessionRequest) (map[string]any, error) {
	displayName := req.DisplayName
	if displayName == "" {
		displayName = "payrelay"
	}

	body := map[string]any{
		"merchantIdentifier": c.appleMerchantID,
		"displayName":        displayName,
		"initiative":         "web",
		"initiativeContext":  req.Domain,
	}

	resp, err := c.http.SendJSON(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: req.ValidationURL,
		Body:     body,
	})
	if err != nil {
		return nil, &provider.GatewayError{Op: "merchant validation", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("merchant validation failed with status %d", resp.StatusCode)
	}

	var session map[string]any
	if err := c.http.ParseJSONResponse(resp, &session); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse merchant session: %w", err)
	}

	return session, nil
}

func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
}
