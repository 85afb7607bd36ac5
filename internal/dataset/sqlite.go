package dataset

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"drivesim/internal/env"
)

// schema.sql creates the session and sample tables.
//
//go:embed schema.sql
var schemaSQL string

// SQLiteRecorder stores samples in a SQLite database, one session per
// recorder
type SQLiteRecorder struct {
	db      *sql.DB
	insert  *sql.Stmt
	session string
	rays    int
	count   int
}

// NewSQLiteRecorder opens (or creates) the database and starts a session
func NewSQLiteRecorder(path string, rays int) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply dataset schema: %v", err)
	}

	session := uuid.NewString()
	if _, err := db.Exec(`INSERT INTO sessions (id, rays, started_at) VALUES (?, ?, ?)`,
		session, rays, time.Now().Unix()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start session: %v", err)
	}

	stmt, err := db.Prepare(`
		INSERT INTO samples (session_id, rays, speed, acceleration, action)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRecorder{db: db, insert: stmt, session: session, rays: rays}, nil
}

// Session returns the id of the recording session
func (r *SQLiteRecorder) Session() string {
	return r.session
}

// Record stores one sample, rounded like the CSV format
func (r *SQLiteRecorder) Record(s Sample) error {
	if len(s.Rays) != r.rays {
		return fmt.Errorf("dataset: sample has %d rays, recorder expects %d", len(s.Rays), r.rays)
	}
	s = s.Rounded()
	rays, err := json.Marshal(s.Rays)
	if err != nil {
		return err
	}
	if _, err := r.insert.Exec(r.session, string(rays), s.Speed, s.Accel, s.Action.String()); err != nil {
		return fmt.Errorf("failed to insert sample: %v", err)
	}
	r.count++
	return nil
}

// Close ends the session and closes the database
func (r *SQLiteRecorder) Close() error {
	_, err := r.db.Exec(`UPDATE sessions SET ended_at = ?, sample_count = ? WHERE id = ?`,
		time.Now().Unix(), r.count, r.session)
	r.insert.Close()
	if cerr := r.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadSQLite loads the samples of one session, or of every session when
// session is empty, in insertion order
func ReadSQLite(path, session string) ([]Sample, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `SELECT id, rays, speed, acceleration, action FROM samples ORDER BY id`
	args := []any{}
	if session != "" {
		query = `SELECT id, rays, speed, acceleration, action FROM samples WHERE session_id = ? ORDER BY id`
		args = append(args, session)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var (
			id     int64
			rays   string
			s      Sample
			action string
		)
		if err := rows.Scan(&id, &rays, &s.Speed, &s.Accel, &action); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rays), &s.Rays); err != nil {
			return nil, fmt.Errorf("sample %d: %w", id, err)
		}
		if s.Action, err = env.ParseAction(action); err != nil {
			return nil, fmt.Errorf("sample %d: %w", id, err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
