// Package sqlite stores screenshots in a SQLite database using the pure Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS screenshots (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	domain TEXT NOT NULL,
	title TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	thumbnail TEXT NOT NULL,
	full_image TEXT NOT NULL,
	edited BLOB,
	captured_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS screenshots_captured_at ON screenshots (captured_at DESC);`

// Store is a SQLite backed store.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dataSourceName and creates the schema.
func NewStore(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create screenshots table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) List(ctx context.Context) ([]*shot.Screenshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, url, domain, title, status_code, thumbnail, full_image, captured_at
		FROM screenshots ORDER BY captured_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()
	var out []*shot.Screenshot
	for rows.Next() {
		var (
			sc shot.Screenshot
			at int64
		)
		if err := rows.Scan(&sc.ID, &sc.URL, &sc.Domain, &sc.Title, &sc.StatusCode, &sc.Thumbnail, &sc.FullImage, &at); err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}
		sc.CapturedAt = time.Unix(0, at).UTC()
		out = append(out, &sc)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*shot.Screenshot, error) {
	log := logrus.WithField("screenshot_id", id)
	var (
		sc shot.Screenshot
		at int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, url, domain, title, status_code, thumbnail, full_image, edited, captured_at
		FROM screenshots WHERE id = ?`, id).
		Scan(&sc.ID, &sc.URL, &sc.Domain, &sc.Title, &sc.StatusCode, &sc.Thumbnail, &sc.FullImage, &sc.Edited, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.WithError(err).Error("failed to read screenshot")
		return nil, err
	}
	sc.CapturedAt = time.Unix(0, at).UTC()
	return &sc, nil
}

func (s *Store) Save(ctx context.Context, sc *shot.Screenshot) error {
	if err := store.ValidID(sc.ID); err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{
		"screenshot_id": sc.ID,
		"edited_bytes":  len(sc.Edited),
	})
	var edited any
	if sc.HasEdit() {
		edited = sc.Edited
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO screenshots
		(id, url, domain, title, status_code, thumbnail, full_image, edited, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			domain = excluded.domain,
			title = excluded.title,
			status_code = excluded.status_code,
			thumbnail = excluded.thumbnail,
			full_image = excluded.full_image,
			edited = excluded.edited,
			captured_at = excluded.captured_at`,
		sc.ID, sc.URL, sc.Domain, sc.Title, sc.StatusCode, sc.Thumbnail, sc.FullImage, edited, sc.CapturedAt.UnixNano())
	if err != nil {
		log.WithError(err).Error("failed to save screenshot")
		return err
	}
	log.Debug("screenshot saved")
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM screenshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	logrus.WithField("screenshot_id", id).Debug("screenshot deleted")
	return nil
}
