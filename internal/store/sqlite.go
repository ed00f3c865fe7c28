package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/eventara/events-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying handle so the venue coordinate cache can share
// the same database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	event_date  TEXT NOT NULL,
	event_time  TEXT NOT NULL,
	location    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	link_url    TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	source      TEXT NOT NULL,
	latitude    REAL,
	longitude   REAL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_events_identity
	ON events (lower(trim(title)), event_date);
CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(event_date);

CREATE TABLE IF NOT EXISTS venue_coordinates (
	venue_name TEXT PRIMARY KEY,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	accuracy   TEXT NOT NULL,
	confidence REAL NOT NULL,
	source     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS venue_corrections (
	id           TEXT PRIMARY KEY,
	original     TEXT NOT NULL,
	corrected    TEXT NOT NULL,
	latitude     REAL,
	longitude    REAL,
	submitted_by TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_venue_corrections_status ON venue_corrections(status);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	scraped     INTEGER NOT NULL DEFAULT 0,
	saved       INTEGER NOT NULL DEFAULT 0,
	pages       INTEGER NOT NULL DEFAULT 0,
	message     TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_source ON scrape_runs(source);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_status ON scrape_runs(status);
`

const sqliteDateLayout = "2006-01-02"

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveEvents writes new events for one source inside a single transaction,
// skipping events whose (title, date) identity already exists.
func (s *SQLiteStore) SaveEvents(ctx context.Context, source string, events []model.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save events")
	}
	defer tx.Rollback() //nolint:errcheck

	saved := 0
	for _, e := range events {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM events WHERE lower(trim(title)) = lower(trim(?)) AND event_date = ?)`,
			e.Title, e.Date.Format(sqliteDateLayout),
		).Scan(&exists)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: check event %q", e.Title)
		}
		if exists {
			continue
		}

		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, title, event_date, event_time, location, description, price, image_url, link_url, category, source, latitude, longitude)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Title, e.Date.Format(sqliteDateLayout), e.Time, e.Location,
			e.Description, e.Price, e.ImageURL, e.LinkURL, e.Category, source,
			e.Latitude, e.Longitude,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert event %q", e.Title)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save events")
	}
	return saved, nil
}

func (s *SQLiteStore) ListEventsMissingCoordinates(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, event_date, event_time, location, description, price, image_url, link_url, category, source, created_at
		 FROM events WHERE latitude IS NULL
		 ORDER BY created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events missing coordinates")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var date string
		if err := rows.Scan(&e.ID, &e.Title, &date, &e.Time, &e.Location,
			&e.Description, &e.Price, &e.ImageURL, &e.LinkURL, &e.Category,
			&e.Source, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		if e.Date, err = time.Parse(sqliteDateLayout, date); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse event date %q", date)
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list events iterate")
}

func (s *SQLiteStore) UpdateEventCoordinates(ctx context.Context, eventID string, lat, lon float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET latitude = ?, longitude = ? WHERE id = ?`,
		lat, lon, eventID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update event coordinates %s", eventID)
	}
	return checkRowsAffected(res, "event", eventID)
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		id, source, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Source:    source,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result model.SourceResult) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scrape_runs SET status = ?, scraped = ?, saved = ?, pages = ?, message = ?, finished_at = ? WHERE id = ?`,
		string(result.Status), result.ScrapedEvents, result.SavedEvents,
		result.Pages, result.Message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scrape_runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusError), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, scraped, saved, pages, message, started_at, finished_at FROM scrape_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Status, &r.Scraped, &r.Saved,
			&r.Pages, &r.Message, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveCorrection(ctx context.Context, c model.Correction) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO venue_corrections (id, original, corrected, latitude, longitude, submitted_by, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Original, c.Corrected, c.Latitude, c.Longitude, c.SubmittedBy, c.Status,
	)
	return eris.Wrap(err, "sqlite: save correction")
}

func (s *SQLiteStore) ListCorrections(ctx context.Context, status string) ([]model.Correction, error) {
	query := `SELECT id, original, corrected, latitude, longitude, submitted_by, status, created_at FROM venue_corrections`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list corrections")
	}
	defer rows.Close()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(&c.ID, &c.Original, &c.Corrected, &c.Latitude,
			&c.Longitude, &c.SubmittedBy, &c.Status, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan correction")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list corrections iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
