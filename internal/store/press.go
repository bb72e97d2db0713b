package store

import (
	"database/sql"
	"time"
)

// Press is a recorded key press.
type Press struct {
	ID        int64
	SessionID string
	Hand      string
	Finger    string
	Key       string
	PressedAt time.Time
}

// PressRepository provides access to presses.
type PressRepository struct {
	db *sql.DB
}

// Presses returns the press repository for this store.
func (s *Store) Presses() *PressRepository {
	return &PressRepository{db: s.db}
}

// Create inserts p and sets its ID.
func (r *PressRepository) Create(p *Press) error {
	if p.PressedAt.IsZero() {
		p.PressedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO presses (session_id, hand, finger, sound_key, pressed_at) VALUES (?, ?, ?, ?, ?)`,
		p.SessionID, p.Hand, p.Finger, p.Key, p.PressedAt,
	)
	if err != nil {
		return err
	}
	p.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's presses in the order they happened.
func (r *PressRepository) ListBySession(sessionID string) ([]*Press, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, hand, finger, sound_key, pressed_at
		 FROM presses WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presses []*Press
	for rows.Next() {
		p := &Press{}
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Hand, &p.Finger, &p.Key, &p.PressedAt); err != nil {
			return nil, err
		}
		presses = append(presses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return presses, nil
}

// CountByKey returns how many times each key was pressed in a session.
func (r *PressRepository) CountByKey(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT sound_key, COUNT(*) FROM presses WHERE session_id = ? GROUP BY sound_key`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
