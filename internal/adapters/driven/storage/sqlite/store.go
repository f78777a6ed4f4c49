// Package sqlite provides SQLite-backed storage for decision records.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/draftaid-io/draftaid/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DecisionStore = (*Store)(nil)

// Store is a SQLite-backed decision store. It keeps the accept/dismiss
// audit trail across sessions so dismissed fragments stay suppressed.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.draftaid/data/decisions.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".draftaid", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "decisions.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_decisions.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Record stores a decision.
func (s *Store) Record(ctx context.Context, decision *domain.Decision) error {
	if decision == nil || decision.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, action, category, original, fragment_key, replacement, explanation, severity, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, decision.ID, string(decision.Action), string(decision.Category), decision.Original,
		domain.NormaliseFragment(decision.Original), decision.Replacement,
		decision.Explanation, string(decision.Severity), decision.DecidedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving decision: %w", err)
	}
	return nil
}

// List returns the most recent decisions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, category, original, replacement, explanation, severity, decided_at
		FROM decisions
		ORDER BY decided_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.Decision
		var action, category, severity string
		var decidedAt sql.NullTime
		if err := rows.Scan(&d.ID, &action, &category, &d.Original,
			&d.Replacement, &d.Explanation, &severity, &decidedAt); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}

		d.Action = domain.DecisionAction(action)
		d.Category = domain.Category(category)
		d.Severity = domain.Severity(severity)
		if decidedAt.Valid {
			d.DecidedAt = decidedAt.Time
		}
		decisions = append(decisions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}

	return decisions, nil
}

// WasDismissed reports whether an identical fragment was dismissed for
// the category.
func (s *Store) WasDismissed(ctx context.Context, category domain.Category, fragment string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM decisions
		WHERE action = ? AND category = ? AND fragment_key = ?
	`, string(domain.DecisionDismissed), string(category), domain.NormaliseFragment(fragment)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking dismissal: %w", err)
	}
	return count > 0, nil
}
