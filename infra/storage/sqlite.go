package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/payrelay/payrelay/provider"
)

// AttemptStore persists payment attempts to SQLite for auditing. It
// implements provider.AttemptLogger. All stored request and response bodies
// are sanitized first; card numbers, CVVs and secrets never reach disk.
type AttemptStore struct {
	db   *sql.DB
	path string
}

// NewAttemptStore opens (or creates) the attempt database at dbPath.
func NewAttemptStore(dbPath string) (*AttemptStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// WAL keeps concurrent request handlers from tripping over each other.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &AttemptStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the underlying database.
func (s *AttemptStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *AttemptStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *AttemptStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payment_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL DEFAULT '',
		flow TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		request TEXT,
		response TEXT,
		status TEXT,
		error_code TEXT,
		processing_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_payment_attempts_region ON payment_attempts(region);
	CREATE INDEX IF NOT EXISTS idx_payment_attempts_created ON payment_attempts(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// retryOperation executes a database operation with retry logic for
// SQLITE_BUSY errors.
func (s *AttemptStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// LogRequest records a new payment attempt and returns its id.
func (s *AttemptStore) LogRequest(ctx context.Context, region string, flow provider.Flow, endpoint string, request any) (int64, error) {
	requestJSON, err := sanitizedJSON(request)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	var attemptID int64
	err = s.retryOperation(func() error {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO payment_attempts (region, flow, endpoint, request) VALUES (?, ?, ?, ?)`,
			region, string(flow), endpoint, requestJSON,
		)
		if err != nil {
			return err
		}
		attemptID, err = result.LastInsertId()
		return err
	}, 3)
	if err != nil {
		return 0, fmt.Errorf("failed to log attempt: %w", err)
	}

	return attemptID, nil
}

// LogOutcome records the outcome of a previously logged attempt.
func (s *AttemptStore) LogOutcome(ctx context.Context, attemptID int64, outcome any, status string, processingMs int64) error {
	outcomeJSON, err := sanitizedJSON(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	return s.retryOperation(func() error {
		result, err := s.db.ExecContext(ctx,
			`UPDATE payment_attempts SET response = ?, status = ?, processing_ms = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			outcomeJSON, status, processingMs, attemptID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("no attempt found with id %d", attemptID)
		}
		return nil
	}, 3)
}

// LogError records a failure against a previously logged attempt.
func (s *AttemptStore) LogError(ctx context.Context, attemptID int64, errorCode, errorMsg string, processingMs int64) error {
	errorResponse := map[string]any{
		"error":   true,
		"code":    errorCode,
		"message": errorMsg,
		"time":    time.Now(),
	}
	errorJSON, err := json.Marshal(errorResponse)
	if err != nil {
		return fmt.Errorf("failed to marshal error: %w", err)
	}

	return s.retryOperation(func() error {
		result, err := s.db.ExecContext(ctx,
			`UPDATE payment_attempts SET response = ?, status = 'failed', error_code = ?, processing_ms = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(errorJSON), errorCode, processingMs, attemptID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("no attempt found with id %d", attemptID)
		}
		return nil
	}, 3)
}

// sanitizedJSON marshals v, round-trips it through a generic map and strips
// sensitive fields before returning the JSON text to persist.
func sanitizedJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		// Not an object (e.g. an array); store as-is.
		return string(raw), nil
	}

	sanitized, err := json.Marshal(SanitizeForLog(asMap))
	if err != nil {
		return "", err
	}
	return string(sanitized), nil
}
