package geocode

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// SQLiteCache stores venue coordinates in SQLite.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache wraps an existing database handle.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) Get(ctx context.Context, name string, maxAge time.Duration) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at
		FROM venue_coordinates
		WHERE venue_name = ? AND updated_at > ?`,
		name, time.Now().Add(-maxAge))

	var e Entry
	err := row.Scan(&e.VenueName, &e.Latitude, &e.Longitude, &e.Accuracy,
		&e.Confidence, &e.Source, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "geocode: query venue cache")
	}
	return &e, nil
}

func (c *SQLiteCache) Put(ctx context.Context, e Entry) error {
	now := time.Now()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO venue_coordinates (venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (venue_name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			accuracy = excluded.accuracy,
			confidence = excluded.confidence,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		e.VenueName, e.Latitude, e.Longitude, e.Accuracy, e.Confidence, e.Source, now, now)
	if err != nil {
		return eris.Wrap(err, "geocode: upsert venue cache")
	}
	return nil
}

func (c *SQLiteCache) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at
		FROM venue_coordinates
		WHERE venue_name LIKE '%' || ? || '%'
		ORDER BY confidence DESC
		LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: search venue cache")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.VenueName, &e.Latitude, &e.Longitude, &e.Accuracy,
			&e.Confidence, &e.Source, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "geocode: scan venue cache row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "geocode: iterate venue cache rows")
	}
	return entries, nil
}
