package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/paulmach/orb"

	"github.com/rendis/quakemap/internal/model"
)

// Store persists filtered earthquake snapshots keyed by the selection that
// produced them.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS earthquakes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		title TEXT,
		magnitude REAL,
		time_ms INTEGER,
		lng REAL,
		lat REAL,
		selection TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(id, selection)
	);
	CREATE INDEX IF NOT EXISTS idx_earthquakes_selection ON earthquakes(selection);
	CREATE INDEX IF NOT EXISTS idx_earthquakes_magnitude ON earthquakes(magnitude);
	CREATE INDEX IF NOT EXISTS idx_earthquakes_coords ON earthquakes(lat, lng);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// InsertBatch stores quakes under sel in one transaction. Rows already stored
// for the same selection are ignored. It returns the number of new rows.
func (s *Store) InsertBatch(sel model.Selection, quakes []model.Earthquake) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO earthquakes
		(id, title, magnitude, time_ms, lng, lat, selection)
		VALUES (?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, q := range quakes {
		var lng, lat sql.NullFloat64
		if q.Located {
			lng = sql.NullFloat64{Float64: q.Lng(), Valid: true}
			lat = sql.NullFloat64{Float64: q.Lat(), Valid: true}
		}
		var mag sql.NullFloat64
		if q.Magnitude != nil {
			mag = sql.NullFloat64{Float64: *q.Magnitude, Valid: true}
		}

		res, err := stmt.Exec(q.ID, q.Title, mag, q.Time, lng, lat, sel.Key())
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting %s: %w", q.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}

	return inserted, nil
}

// Earthquakes returns the events stored for sel in insertion order.
func (s *Store) Earthquakes(sel model.Selection) ([]model.Earthquake, error) {
	rows, err := s.db.Query(`
		SELECT id, title, magnitude, time_ms, lng, lat
		FROM earthquakes WHERE selection = ? ORDER BY seq
	`, sel.Key())
	if err != nil {
		return nil, fmt.Errorf("querying earthquakes: %w", err)
	}
	defer rows.Close()

	var out []model.Earthquake
	for rows.Next() {
		var (
			q        model.Earthquake
			title    sql.NullString
			mag      sql.NullFloat64
			lng, lat sql.NullFloat64
		)
		if err := rows.Scan(&q.ID, &title, &mag, &q.Time, &lng, &lat); err != nil {
			return nil, fmt.Errorf("scanning earthquake: %w", err)
		}
		q.Title = title.String
		if mag.Valid {
			m := mag.Float64
			q.Magnitude = &m
		}
		if lng.Valid && lat.Valid {
			q.Point = orb.Point{lng.Float64, lat.Float64}
			q.Located = true
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM earthquakes").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
