package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// PaymentLog represents a structured payment relay log entry.
type PaymentLog struct {
	Timestamp   time.Time   `json:"timestamp"`
	Region      string      `json:"region,omitempty"`
	Flow        string      `json:"flow,omitempty"`
	Method      string      `json:"method"`
	Endpoint    string      `json:"endpoint"`
	RequestID   string      `json:"request_id"`
	UserAgent   string      `json:"user_agent,omitempty"`
	ClientIP    string      `json:"client_ip,omitempty"`
	Request     RequestLog  `json:"request"`
	Response    ResponseLog `json:"response"`
	PaymentInfo PaymentInfo `json:"payment_info,omitempty"`
	Error       ErrorInfo   `json:"error,omitempty"`
}

// RequestLog represents request details.
type RequestLog struct {
	Body string `json:"body,omitempty"`
}

// ResponseLog represents response details.
type ResponseLog struct {
	StatusCode       int    `json:"status_code"`
	Body             string `json:"body,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// PaymentInfo represents payment-specific information.
type PaymentInfo struct {
	PaymentID        string `json:"payment_id,omitempty"`
	OrderID          string `json:"order_id,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Status           string `json:"status,omitempty"`
	RequiresRedirect bool   `json:"requires_redirect,omitempty"`
}

// ErrorInfo represents error details.
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations.
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger.
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogPaymentRequest logs a payment relay request to OpenSearch.
func (l *Logger) LogPaymentRequest(ctx context.Context, entry PaymentLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}

	indexName := l.client.GetLogIndexName(entry.Region)

	logJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// IndexSystemLog indexes a system log entry into the shared system index.
func (l *Logger) IndexSystemLog(ctx context.Context, entry any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	logJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal system log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: "payrelay-system-logs",
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index system log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}
