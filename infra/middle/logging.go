package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payrelay/payrelay/infra/opensearch"
	"github.com/payrelay/payrelay/infra/storage"
)

// responseWriter wraps http.ResponseWriter to capture response data.
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// PaymentLoggingMiddleware indexes sanitized request/response pairs for the
// payment endpoints into OpenSearch.
func PaymentLoggingMiddleware(osLogger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isPaymentEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := uuid.New().String()
			r.Header.Set("X-Request-ID", requestID)

			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			entry := opensearch.PaymentLog{
				Timestamp: rw.startTime,
				Region:    regionFromBody(requestBody),
				Flow:      flowFromPath(r.URL.Path),
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				RequestID: requestID,
				UserAgent: r.UserAgent(),
				ClientIP:  GetClientIP(r),
				Request: opensearch.RequestLog{
					Body: sanitizeBody(requestBody),
				},
				Response: opensearch.ResponseLog{
					StatusCode:       rw.statusCode,
					Body:             sanitizeBody(rw.body.Bytes()),
					ProcessingTimeMs: time.Since(rw.startTime).Milliseconds(),
				},
			}

			// Ship asynchronously; logging never delays the response.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = osLogger.LogPaymentRequest(ctx, entry)
			}()
		})
	}
}

func isPaymentEndpoint(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func flowFromPath(path string) string {
	switch {
	case strings.Contains(path, "applepay"):
		return "applepay"
	case strings.Contains(path, "apple-merchant"):
		return "merchant_session"
	default:
		return "card"
	}
}

func regionFromBody(body []byte) string {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	if region, ok := data["region"].(string); ok && region != "" {
		return region
	}
	if country, ok := data["country"].(string); ok {
		return country
	}
	return ""
}

func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	sanitized, err := json.Marshal(storage.SanitizeForLog(data))
	if err != nil {
		return ""
	}
	return string(sanitized)
}
