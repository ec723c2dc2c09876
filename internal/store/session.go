package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Session is one run of the classifier.
type Session struct {
	ID         string          `json:"id"`
	SchemaName string          `json:"schema"`
	Settings   json.RawMessage `json:"settings"`
	Frames     int             `json:"frames"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    *time.Time      `json:"ended_at,omitempty"`
}

// Active reports whether the session has not ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionRepository provides operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, schema_name, settings, frames, started_at, ended_at`

// Start inserts a new open session.
func (r *SessionRepository) Start(s *Session) error {
	s.StartedAt = time.Now()
	s.EndedAt = nil

	settings := s.Settings
	if settings == nil {
		settings = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, schema_name, settings, frames, started_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.SchemaName, string(settings), s.Frames, s.StartedAt,
	)
	return err
}

// End closes a session and records how many frames it classified.
func (r *SessionRepository) End(id string, frames int) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		frames, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	return scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

// List retrieves sessions, newest first. A limit of 0 or less returns all of them.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its hits.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var settings string
	var ended sql.NullTime

	err := row.Scan(&s.ID, &s.SchemaName, &settings, &s.Frames, &s.StartedAt, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.Settings = json.RawMessage(settings)
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}
