// Package dogmstore persists grid-cell snapshots from a dogm run to a
// SQLite database, schema-managed via golang-migrate.
package dogmstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dogm-go/dogm/internal/dogm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a *sql.DB open on a SQLite file or :memory: database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and migrates it to
// the latest schema version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dogmstore: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("dogmstore: create migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("dogmstore: create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("dogmstore: create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("dogmstore: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run represents one occupancy-map run being persisted.
type Run struct {
	ID         string
	GridSize   int
	Resolution float32
}

// StartRun inserts a new grid_run row with a freshly generated ID and the
// given startedUnixNanos timestamp.
func (s *Store) StartRun(gridSize int, resolution float32, startedUnixNanos int64) (*Run, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO grid_run (run_id, started_unix_nanos, grid_size, resolution) VALUES (?, ?, ?, ?)`,
		id, startedUnixNanos, gridSize, resolution,
	)
	if err != nil {
		return nil, fmt.Errorf("dogmstore: insert grid_run: %w", err)
	}
	return &Run{ID: id, GridSize: gridSize, Resolution: resolution}, nil
}

// SaveSnapshot serialises cells to JSON and inserts a grid_snapshot row
// for the given run at frameTimestamp.
func (s *Store) SaveSnapshot(run *Run, frameTimestamp float64, cells []dogm.GridCell) error {
	blob, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("dogmstore: marshal cells: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO grid_snapshot (run_id, frame_timestamp, cells_blob) VALUES (?, ?, ?)`,
		run.ID, frameTimestamp, blob,
	)
	if err != nil {
		return fmt.Errorf("dogmstore: insert grid_snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads back and deserialises the grid cells for a run's
// most recent snapshot at or before frameTimestamp.
func (s *Store) LoadSnapshot(runID string, frameTimestamp float64) ([]dogm.GridCell, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT cells_blob FROM grid_snapshot WHERE run_id = ? AND frame_timestamp <= ? ORDER BY frame_timestamp DESC LIMIT 1`,
		runID, frameTimestamp,
	).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("dogmstore: query grid_snapshot: %w", err)
	}

	var cells []dogm.GridCell
	if err := json.Unmarshal(blob, &cells); err != nil {
		return nil, fmt.Errorf("dogmstore: unmarshal cells: %w", err)
	}
	return cells, nil
}
