package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/all-black-493/supportly/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// Store is the SQLite database holding knowledge base entries.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.supportly/data/entries.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".supportly", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "entries.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// EntryStore returns an EntryStore interface backed by this store.
func (s *Store) EntryStore() driven.EntryStore {
	return &entryStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_entries.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Entry Store ====================

// entryStore implements driven.EntryStore.
type entryStore struct {
	store *Store
}

var _ driven.EntryStore = (*entryStore)(nil)

const entryColumns = `id, namespace, key, title, content_hash, mime_type, size, chunk_count, metadata, created_at`

// CreateEntry inserts the entry unless the namespace already holds its content hash.
func (s *entryStore) CreateEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, content_hash) DO NOTHING
	`, entry.ID, string(entry.Namespace), entry.Key, entry.Title, entry.ContentHash,
		entry.MIMEType, entry.Size, entry.ChunkCount, string(metadataJSON), entry.CreatedAt.UnixNano())
	if err != nil {
		return nil, wrapErr("inserting entry", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, wrapErr("inserting entry", err)
	}
	if affected == 0 {
		existing, err := s.FindByHash(ctx, entry.Namespace, entry.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("loading conflicting entry: %w", err)
		}
		return existing, domain.ErrAlreadyExists
	}

	created := *entry
	return &created, nil
}

// GetEntry retrieves an entry by ID.
func (s *entryStore) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries WHERE id = ?
	`, id)

	return scanEntry(row)
}

// FindByHash retrieves the namespace's entry for a content hash.
func (s *entryStore) FindByHash(ctx context.Context, ns domain.Namespace, contentHash string) (*domain.Entry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries WHERE namespace = ? AND content_hash = ?
	`, string(ns), contentHash)

	return scanEntry(row)
}

// ListEntries returns the namespace's entries, newest first.
func (s *entryStore) ListEntries(ctx context.Context, ns domain.Namespace) ([]domain.Entry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE namespace = ?
		ORDER BY created_at DESC, id ASC
	`, string(ns))
	if err != nil {
		return nil, wrapErr("querying entries", err)
	}
	defer rows.Close()

	var entries []domain.Entry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterating entries", err)
	}

	return entries, nil
}

// DeleteEntry removes an entry. Missing entries are ignored.
func (s *entryStore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id); err != nil {
		return wrapErr("deleting entry", err)
	}
	return nil
}

// CountEntries returns the number of entries in the namespace.
func (s *entryStore) CountEntries(ctx context.Context, ns domain.Namespace) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE namespace = ?", string(ns))
	if err := row.Scan(&n); err != nil {
		return 0, wrapErr("counting entries", err)
	}
	return n, nil
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		entry        domain.Entry
		namespace    string
		metadataJSON string
		createdAt    int64
	)

	err := row.Scan(&entry.ID, &namespace, &entry.Key, &entry.Title, &entry.ContentHash,
		&entry.MIMEType, &entry.Size, &entry.ChunkCount, &metadataJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("scanning entry", err)
	}

	entry.Namespace = domain.Namespace(namespace)
	entry.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]string{}
	}

	return &entry, nil
}

// wrapErr marks lock contention as transient so callers may retry.
func wrapErr(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientIO, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
