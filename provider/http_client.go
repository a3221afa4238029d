package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClientConfig represents configuration for the gateway HTTP client.
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
}

// HTTPRequest represents a standardized outbound request. BasicAuthUser and
// BasicAuthPass carry the per-region credential pair; they are set per call
// and never stored on the client.
type HTTPRequest struct {
	Method        string
	Endpoint      string
	Headers       map[string]string
	QueryParams   map[string]string
	Body          any
	BasicAuthUser string
	BasicAuthPass string
}

// HTTPResponse represents a standardized HTTP response. Non-2xx statuses are
// not treated as errors here: payment-creation responses must reach the
// normalizer verbatim, whatever their status.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ContentType returns the response's declared content type.
func (r *HTTPResponse) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// GatewayHTTPClient provides standardized HTTP operations against the
// payment gateway.
type GatewayHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewGatewayHTTPClient creates a new gateway HTTP client.
func NewGatewayHTTPClient(config *HTTPClientConfig) *GatewayHTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &GatewayHTTPClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// SendJSON sends a JSON request and returns the response. Only transport
// failures produce an error.
func (c *GatewayHTTPClient) SendJSON(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	fullURL := c.buildURL(req.Endpoint, req.QueryParams)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if req.BasicAuthUser != "" {
		httpReq.SetBasicAuth(req.BasicAuthUser, req.BasicAuthPass)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// ParseJSONResponse parses the response body as JSON into the target.
func (c *GatewayHTTPClient) ParseJSONResponse(response *HTTPResponse, target any) error {
	return json.Unmarshal(response.Body, target)
}

func joinURL(base, endpoint string) string {
	if strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/") {
		return base + endpoint[1:]
	}
	if !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/") {
		return base + "/" + endpoint
	}
	return base + endpoint
}

// buildURL constructs the full URL with query parameters. Absolute endpoints
// (the Apple Pay validation URL is caller-supplied) are used as-is.
func (c *GatewayHTTPClient) buildURL(endpoint string, queryParams map[string]string) string {
	fullURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		fullURL = joinURL(c.config.BaseURL, endpoint)
	}

	if len(queryParams) == 0 {
		return fullURL
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	q := u.Query()
	for key, value := range queryParams {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
