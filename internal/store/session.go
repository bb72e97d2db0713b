package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session sources.
const (
	SourceCamera = "camera"
	SourceReplay = "replay"
)

// Session is one run of the keyboard.
type Session struct {
	ID        string
	Source    string
	Frames    int
	Presses   int
	StartedAt time.Time
	EndedAt   *time.Time
}

// Active reports whether the session has not been ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionRepository provides access to sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `s.id, s.source, s.frames, s.started_at, s.ended_at,
	(SELECT COUNT(*) FROM presses p WHERE p.session_id = s.id)`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Source, &sess.Frames, &sess.StartedAt, &ended, &sess.Presses); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

// Create inserts sess, assigning an ID, source and start time when unset.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Source == "" {
		sess.Source = SourceCamera
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, source, frames, started_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.Frames, sess.StartedAt,
	)
	return err
}

// GetByID retrieves a session with its press count.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT ` + sessionColumns + ` FROM sessions s ORDER BY s.started_at DESC, s.rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// End stamps the session's end time.
func (r *SessionRepository) End(id string, at time.Time) error {
	return r.exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, at, id)
}

// IncrementFrames adds n processed frames to the session.
func (r *SessionRepository) IncrementFrames(id string, n int) error {
	return r.exec(`UPDATE sessions SET frames = frames + ? WHERE id = ?`, n, id)
}

// Delete removes the session and its presses.
func (r *SessionRepository) Delete(id string) error {
	return r.exec(`DELETE FROM sessions WHERE id = ?`, id)
}

func (r *SessionRepository) exec(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
