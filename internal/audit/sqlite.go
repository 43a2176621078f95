// ABOUTME: SQLite backend for durable audit entry storage using modernc.org/sqlite
// ABOUTME: Schema is created automatically; writes are fire-and-forget from the recorder

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend persists audit entries to a local SQLite database.
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteBackend opens (or creates) the audit database at path.
// Parent directories are created if needed.
func NewSQLiteBackend(path string, logger *slog.Logger) (*SQLiteBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit-sqlite")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	b := &SQLiteBackend{db: db, logger: logger}
	if err := b.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("audit database initialized", "path", path)
	return b, nil
}

func (b *SQLiteBackend) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			ts DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			user_id TEXT,
			resource_type TEXT,
			resource_id TEXT,
			status TEXT NOT NULL,
			thread_id TEXT,
			post_id TEXT,
			ip_address TEXT,
			user_agent TEXT,
			details_json TEXT,
			error_message TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_audit_log_ts
			ON audit_log(ts);

		CREATE INDEX IF NOT EXISTS idx_audit_log_type
			ON audit_log(event_type);

		CREATE INDEX IF NOT EXISTS idx_audit_log_thread
			ON audit_log(thread_id);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Insert writes one entry. Implements Backend.
func (b *SQLiteBackend) Insert(ctx context.Context, e *Entry) error {
	var detailsJSON *string
	if len(e.Details) > 0 {
		data, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshaling audit details: %w", err)
		}
		str := string(data)
		detailsJSON = &str
	}

	query := `
		INSERT INTO audit_log (id, ts, event_type, user_id, resource_type, resource_id, status, thread_id, post_id, ip_address, user_agent, details_json, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.db.ExecContext(ctx, query,
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Type,
		e.UserID,
		e.ResourceType,
		e.ResourceID,
		e.Status,
		e.ThreadID,
		e.PostID,
		e.IPAddress,
		e.UserAgent,
		detailsJSON,
		e.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
