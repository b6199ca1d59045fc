// Package registrysrv implements the qinter pack registry service: a
// SQLite-backed package store behind a small JSON HTTP API.
package registrysrv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSuchPack is returned for lookups of packs the store does not hold.
var ErrNoSuchPack = errors.New("no such pack")

// StoredPack is one (name, version) row in the registry store.
type StoredPack struct {
	Name        string
	Version     string
	Description string
	Author      string
	License     string
	Tags        []string
	Homepage    string
	Repository  string
	Downloads   int
	Content     string
	UploadedAt  time.Time
}

// Store persists uploaded packs in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the registry database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create registry directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS packages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		license TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		homepage TEXT NOT NULL DEFAULT '',
		repository TEXT NOT NULL DEFAULT '',
		downloads INTEGER NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_packages_name ON packages(name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create registry schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Put inserts or replaces one pack version.
func (s *Store) Put(ctx context.Context, p StoredPack) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (name, version, description, author, license, tags,
			homepage, repository, content, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, version) DO UPDATE SET
			description = excluded.description,
			author = excluded.author,
			license = excluded.license,
			tags = excluded.tags,
			homepage = excluded.homepage,
			repository = excluded.repository,
			content = excluded.content,
			uploaded_at = excluded.uploaded_at`,
		p.Name, p.Version, p.Description, p.Author, p.License,
		strings.Join(p.Tags, ","), p.Homepage, p.Repository,
		p.Content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store pack %s@%s: %w", p.Name, p.Version, err)
	}
	return nil
}

// Latest returns the most recently uploaded version of a pack.
func (s *Store) Latest(ctx context.Context, name string) (*StoredPack, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM packages WHERE name = ?
		ORDER BY uploaded_at DESC, id DESC LIMIT 1`, name)
	return scanPack(row)
}

// Version returns one specific version of a pack. Version "latest" resolves
// to the newest upload.
func (s *Store) Version(ctx context.Context, name, version string) (*StoredPack, error) {
	if version == "" || version == "latest" {
		return s.Latest(ctx, name)
	}
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM packages WHERE name = ? AND version = ?`, name, version)
	return scanPack(row)
}

// List returns the latest version of every pack, ordered by sort
// ("downloads" or "name"), capped at limit.
func (s *Store) List(ctx context.Context, sort string, limit int) ([]StoredPack, error) {
	order := "downloads DESC, name ASC"
	if sort == "name" {
		order = "name ASC"
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM packages p
		WHERE uploaded_at = (SELECT MAX(uploaded_at) FROM packages WHERE name = p.name)
		ORDER BY `+order+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	defer rows.Close()
	return scanPacks(rows)
}

// Search matches query case-insensitively against name, description and
// tags of each pack's latest version.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]StoredPack, error) {
	like := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM packages p
		WHERE uploaded_at = (SELECT MAX(uploaded_at) FROM packages WHERE name = p.name)
		AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)
		ORDER BY downloads DESC, name ASC LIMIT ?`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search packs: %w", err)
	}
	defer rows.Close()
	return scanPacks(rows)
}

// CountDownload increments the download counter for one pack version.
func (s *Store) CountDownload(ctx context.Context, name, version string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE packages SET downloads = downloads + 1 WHERE name = ? AND version = ?`,
		name, version)
	if err != nil {
		return fmt.Errorf("count download %s@%s: %w", name, version, err)
	}
	return nil
}

const selectColumns = `
	SELECT name, version, description, author, license, tags,
		homepage, repository, downloads, content, uploaded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPack(row rowScanner) (*StoredPack, error) {
	var p StoredPack
	var tags string
	err := row.Scan(&p.Name, &p.Version, &p.Description, &p.Author, &p.License,
		&tags, &p.Homepage, &p.Repository, &p.Downloads, &p.Content, &p.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSuchPack
	}
	if err != nil {
		return nil, fmt.Errorf("scan pack row: %w", err)
	}
	if tags != "" {
		p.Tags = strings.Split(tags, ",")
	}
	return &p, nil
}

func scanPacks(rows *sql.Rows) ([]StoredPack, error) {
	var out []StoredPack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack rows: %w", err)
	}
	return out, nil
}
