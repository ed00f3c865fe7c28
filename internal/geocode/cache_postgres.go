package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/eventara/events-cli/internal/db"
)

// PostgresCache stores venue coordinates in Postgres.
type PostgresCache struct {
	pool db.Pool
}

// NewPostgresCache wraps an existing connection pool.
func NewPostgresCache(pool db.Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (c *PostgresCache) Get(ctx context.Context, name string, maxAge time.Duration) (*Entry, error) {
	row := c.pool.QueryRow(ctx, `
		SELECT venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at
		FROM venue_coordinates
		WHERE venue_name = $1 AND updated_at > $2`,
		name, time.Now().Add(-maxAge))

	var e Entry
	err := row.Scan(&e.VenueName, &e.Latitude, &e.Longitude, &e.Accuracy,
		&e.Confidence, &e.Source, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "geocode: query venue cache")
	}
	return &e, nil
}

func (c *PostgresCache) Put(ctx context.Context, e Entry) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO venue_coordinates (venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (venue_name) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			accuracy = EXCLUDED.accuracy,
			confidence = EXCLUDED.confidence,
			source = EXCLUDED.source,
			updated_at = now()`,
		e.VenueName, e.Latitude, e.Longitude, e.Accuracy, e.Confidence, e.Source)
	if err != nil {
		return eris.Wrap(err, "geocode: upsert venue cache")
	}
	return nil
}

func (c *PostgresCache) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT venue_name, latitude, longitude, accuracy, confidence, source, created_at, updated_at
		FROM venue_coordinates
		WHERE venue_name ILIKE '%' || $1 || '%'
		ORDER BY confidence DESC
		LIMIT $2`,
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
