// Package storage provides SQLite-based persistence for survey responses.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/quest/internal/submission"
)

// Store manages the SQLite database connection for response persistence.
// It implements submission.Backlog and submission.CompletionLog.
type Store struct {
	db *sql.DB
}

// ResponseEntry is one stored response.
type ResponseEntry struct {
	ID         int64
	ResponseID string
	Respondent string
	Variant    string
	Status     submission.Status
	Attempts   int
	CreatedAt  time.Time
	SentAt     time.Time // Zero until sent
	Payload    submission.Payload
}

// Stats summarises the responses table.
type Stats struct {
	Total   int
	Sent    int
	Pending int
	Last    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			response_id TEXT NOT NULL UNIQUE,
			respondent TEXT NOT NULL DEFAULT '',
			variant TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			sent_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_responses_status ON responses(status);

		CREATE TABLE IF NOT EXISTS completions (
			respondent TEXT PRIMARY KEY,
			completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResponse stores p with the given status. Saving a response again
// updates its status.
func (s *Store) SaveResponse(ctx context.Context, p submission.Payload, status submission.Status) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("storage: cannot encode response: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (response_id, respondent, variant, payload, status, sent_at)
		 VALUES (?, ?, ?, ?, ?, CASE WHEN ? = 'sent' THEN CURRENT_TIMESTAMP END)
		 ON CONFLICT(response_id) DO UPDATE SET
			status = excluded.status,
			sent_at = excluded.sent_at`,
		p.ID, p.Respondent, p.Variant, string(data), string(status), string(status),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save response: %w", err)
	}
	return nil
}

// PendingResponses returns every payload not yet sent, oldest first.
func (s *Store) PendingResponses(ctx context.Context) ([]submission.Payload, error) {
	entries, err := s.queryEntries(ctx,
		`WHERE status = ? ORDER BY id ASC`, string(submission.StatusPending))
	if err != nil {
		return nil, err
	}
	payloads := make([]submission.Payload, len(entries))
	for i, e := range entries {
		payloads[i] = e.Payload
	}
	return payloads, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, responseID string) error {
	return s.update(ctx,
		`UPDATE responses SET status = 'sent', sent_at = CURRENT_TIMESTAMP, attempts = attempts + 1
		 WHERE response_id = ?`, responseID)
}

// MarkAttempt records a failed delivery attempt.
func (s *Store) MarkAttempt(ctx context.Context, responseID string) error {
	return s.update(ctx, `UPDATE responses SET attempts = attempts + 1 WHERE response_id = ?`, responseID)
}

func (s *Store) update(ctx context.Context, query, responseID string) error {
	result, err := s.db.ExecContext(ctx, query, responseID)
	if err != nil {
		return fmt.Errorf("storage: cannot update response: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot update response: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: response %s not found", responseID)
	}
	return nil
}

// RecentResponses retrieves the newest responses first.
func (s *Store) RecentResponses(ctx context.Context, limit int) ([]ResponseEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryEntries(ctx, `ORDER BY id DESC LIMIT ?`, limit)
}

// AllPayloads returns every stored payload in the order it was saved.
func (s *Store) AllPayloads(ctx context.Context) ([]submission.Payload, error) {
	entries, err := s.queryEntries(ctx, `ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	payloads := make([]submission.Payload, len(entries))
	for i, e := range entries {
		payloads[i] = e.Payload
	}
	return payloads, nil
}

func (s *Store) queryEntries(ctx context.Context, clause string, args ...any) ([]ResponseEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, response_id, respondent, variant, payload, status, attempts, created_at, sent_at
		 FROM responses `+clause,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query responses: %w", err)
	}
	defer rows.Close()

	var entries []ResponseEntry
	for rows.Next() {
		var e ResponseEntry
		var payload, status string
		var createdAt, sentAt any
		if err := rows.Scan(&e.ID, &e.ResponseID, &e.Respondent, &e.Variant, &payload, &status,
			&e.Attempts, &createdAt, &sentAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("storage: cannot decode response %s: %w", e.ResponseID, err)
		}
		e.Payload.Respondent = e.Respondent
		e.Status = submission.Status(status)
		e.CreatedAt = parseTime(createdAt)
		e.SentAt = parseTime(sentAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats counts stored responses by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var last any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			MAX(created_at)
		 FROM responses`,
	).Scan(&st.Total, &st.Sent, &st.Pending, &last)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	st.Last = parseTime(last)
	return st, nil
}

// ClearResponses deletes every stored response and returns how many were removed.
func (s *Store) ClearResponses(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM responses")
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear responses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear responses: %w", err)
	}
	return n, nil
}

// MarkCompleted remembers that respondent completed the survey.
func (s *Store) MarkCompleted(ctx context.Context, respondent string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO completions (respondent) VALUES (?)", respondent)
	if err != nil {
		return fmt.Errorf("storage: cannot record completion: %w", err)
	}
	return nil
}

// HasCompleted reports whether respondent completed the survey before.
func (s *Store) HasCompleted(ctx context.Context, respondent string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM completions WHERE respondent = ?", respondent).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query completions: %w", err)
	}
	return n > 0, nil
}

// parseTime handles datetimes returned as time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
