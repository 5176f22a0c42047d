package spacetraveling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPageNotFound is returned when no page is stored under a path.
var ErrPageNotFound = errors.New("spacetraveling: page not found")

// Page is one rendered artifact of the site, keyed by its request path.
type Page struct {
	Path        string
	ContentType string
	Body        []byte
	Fallback    bool // rendered on demand rather than at build time
	BuiltAt     time.Time
}

// Store wraps a SQLite database holding the rendered pages of the site.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server keep reading while a build replaces the pages.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    path TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    body BLOB NOT NULL,
    fallback INTEGER NOT NULL DEFAULT 0,
    built_at TEXT NOT NULL
);
`)
	return err
}

// WritePages replaces every stored page with pages in a single transaction.
// If any write fails the previous site stays in place.
func (s *Store) WritePages(ctx context.Context, pages []Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (path, content_type, body, fallback, built_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range pages {
		if _, err := stmt.ExecContext(ctx, p.Path, p.ContentType, p.Body, boolInt(p.Fallback), formatBuiltAt(p.BuiltAt)); err != nil {
			return fmt.Errorf("write %s: %w", p.Path, err)
		}
	}
	return tx.Commit()
}

// SavePage upserts a single page.
func (s *Store) SavePage(ctx context.Context, p Page) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO pages (path, content_type, body, fallback, built_at) VALUES (?, ?, ?, ?, ?)`,
		p.Path, p.ContentType, p.Body, boolInt(p.Fallback), formatBuiltAt(p.BuiltAt))
	return err
}

// GetPage returns the page stored under path, or ErrPageNotFound.
func (s *Store) GetPage(ctx context.Context, path string) (Page, error) {
	var (
		p        Page
		fallback int
		builtAt  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT path, content_type, body, fallback, built_at FROM pages WHERE path = ?`, path).
		Scan(&p.Path, &p.ContentType, &p.Body, &fallback, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrPageNotFound
	}
	if err != nil {
		return Page{}, err
	}
	p.Fallback = fallback == 1
	p.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
	return p, nil
}

// ListPaths returns every stored path in lexical order.
func (s *Store) ListPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM pages ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatBuiltAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}
