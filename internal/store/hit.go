package store

import (
	"database/sql"
	"time"
)

// Hit is a recorded gesture event.
type Hit struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Frame     int       `json:"frame"`
	Hand      string    `json:"hand"`
	Kind      string    `json:"kind"`
	Direction int       `json:"direction,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Velocity  float64   `json:"velocity"`
	CreatedAt time.Time `json:"created_at"`
}

// HitCount is the number of hits of one kind on one hand.
type HitCount struct {
	Kind  string `json:"kind"`
	Hand  string `json:"hand"`
	Count int    `json:"count"`
}

// HitRepository provides operations for hits.
type HitRepository struct {
	db *sql.DB
}

// Hits returns the hit repository for this store.
func (s *Store) Hits() *HitRepository {
	return &HitRepository{db: s.db}
}

const hitColumns = `id, session_id, frame, hand, kind, direction, x, y, velocity, created_at`

// Record inserts a hit and sets its ID.
func (r *HitRepository) Record(h *Hit) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO hits (session_id, frame, hand, kind, direction, x, y, velocity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.SessionID, h.Frame, h.Hand, h.Kind, h.Direction, h.X, h.Y, h.Velocity, h.CreatedAt,
	)
	if err != nil {
		return err
	}

	h.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's hits in frame order.
func (r *HitRepository) ListBySession(sessionID string) ([]*Hit, error) {
	return r.query(
		`SELECT `+hitColumns+` FROM hits WHERE session_id = ? ORDER BY frame, id`,
		sessionID,
	)
}

// Recent returns the latest hits across all sessions, newest first.
func (r *HitRepository) Recent(limit int) ([]*Hit, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(`SELECT `+hitColumns+` FROM hits ORDER BY id DESC LIMIT ?`, limit)
}

// CountBySession returns per kind and hand totals for a session.
func (r *HitRepository) CountBySession(sessionID string) ([]HitCount, error) {
	rows, err := r.db.Query(
		`SELECT kind, hand, COUNT(*) FROM hits WHERE session_id = ?
		 GROUP BY kind, hand ORDER BY kind, hand`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []HitCount
	for rows.Next() {
		var c HitCount
		if err := rows.Scan(&c.Kind, &c.Hand, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (r *HitRepository) query(query string, args ...any) ([]*Hit, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*Hit
	for rows.Next() {
		h := &Hit{}
		err := rows.Scan(&h.ID, &h.SessionID, &h.Frame, &h.Hand, &h.Kind, &h.Direction,
			&h.X, &h.Y, &h.Velocity, &h.CreatedAt)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}
