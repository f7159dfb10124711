package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Load event outcomes.
const (
	StatusLoaded = "loaded"
	StatusFailed = "failed"
)

// Event is one recorded extension load attempt.
type Event struct {
	ID          string    `json:"id"`
	Extension   string    `json:"extension"`
	Version     string    `json:"version,omitempty"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Error       string    `json:"error,omitempty"`
	EntryPoints int       `json:"entry_points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Catalog records load events in a sql database.
type Catalog struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS load_events (
	id TEXT PRIMARY KEY,
	extension TEXT NOT NULL,
	version TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	entry_points INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_load_events_extension ON load_events(extension);
CREATE INDEX IF NOT EXISTS idx_load_events_created_at ON load_events(created_at);
`

// Open opens (or creates) a sqlite-backed catalog at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	c, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an existing database handle and ensures the schema exists.
func New(db *sql.DB) (*Catalog, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Record inserts a load event, assigning an id and timestamp when unset, and
// returns the stored event.
func (c *Catalog) Record(ctx context.Context, e Event) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO load_events (id, extension, version, status, reason, error, entry_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Extension, e.Version, e.Status, e.Reason, e.Error, e.EntryPoints, e.CreatedAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("failed to record load event: %w", err)
	}

	return e, nil
}

// History returns the most recent load events, newest first.
func (c *Catalog) History(ctx context.Context, limit int) ([]Event, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, extension, version, status, reason, error, entry_points, created_at
		 FROM load_events ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ExtensionHistory returns the most recent load events for one extension,
// newest first.
func (c *Catalog) ExtensionHistory(ctx context.Context, extension string, limit int) ([]Event, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, extension, version, status, reason, error, entry_points, created_at
		 FROM load_events WHERE extension = ? ORDER BY created_at DESC, id LIMIT ?`, extension, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load events for %s: %w", extension, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Extension, &e.Version, &e.Status, &e.Reason, &e.Error, &e.EntryPoints, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan load event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
