package provider

import "context"

// AttemptLogger records payment attempts for auditing. Implementations must
// sanitize card data before persisting; logging failures never fail the
// payment itself.
type AttemptLogger interface {
	LogRequest(ctx context.Context, region string, flow Flow, endpoint string, request any) (int64, error)
	LogOutcome(ctx context.Context, attemptID int64, outcome any, status string, processingMs int64) error
	LogError(ctx context.Context, attemptID int64, errorCode, errorMsg string, processingMs int64) error
}

type nopAttemptLogger struct{}

// NewNopAttemptLogger returns an AttemptLogger that records nothing. Used
// when the attempt store is not configured.
func NewNopAttemptLogger() AttemptLogger {
	return nopAttemptLogger{}
}

func (nopAttemptLogger) LogRequest(context.Context, string, Flow, string, any) (int64, error) {
	return 0, nil
}

func (nopAttemptLogger) LogOutcome(context.Context, int64, any, string, int64) error {
	return nil
}

func (nopAttemptLogger) LogError(context.Context, int64, string, string, int64) error {
	return nil
}
