// ABOUTME: SQLite interaction archive using modernc.org/sqlite
// ABOUTME: Schema auto-creation, WAL mode, append plus filtered listing

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lmv-credia/cobranza-gateway/internal/audit"
)

// SQLiteStore archives interaction records durably.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the archive at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps reads cheap while the bot appends
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("interaction archive initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			phone TEXT NOT NULL,
			destination TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_interactions_phone ON interactions(phone);
		CREATE INDEX IF NOT EXISTS idx_interactions_created ON interactions(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Archive appends one record. Satisfies audit.Archiver.
func (s *SQLiteStore) Archive(rec audit.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO interactions (id, phone, destination, kind, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Phone, rec.Destination, string(rec.Kind), rec.Detail,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

// Filter narrows archive listings. Zero values mean "no constraint".
type Filter struct {
	Phone string
	Kind  audit.Kind
	Since time.Time
	Limit int
}

// List returns archived records newest first. Limit defaults to 100,
// capped at 1000.
func (s *SQLiteStore) List(f Filter) ([]audit.Record, error) {
	query := `SELECT id, phone, destination, kind, detail, created_at
		FROM interactions WHERE 1=1`
	var args []any

	if f.Phone != "" {
		query += " AND phone = ?"
		args = append(args, f.Phone)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var rec audit.Record
		var kind, created string
		if err := rows.Scan(&rec.ID, &rec.Phone, &rec.Destination, &kind, &rec.Detail, &created); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		rec.Kind = audit.Kind(kind)
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing interaction timestamp: %w", err)
		}
		rec.Timestamp = ts
		out = append(out, rec)
	}
	return out, rows.Err()
}
