package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session records one run of the frame loop.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Frames    int64      `json:"frames"`
	Reason    string     `json:"reason,omitempty"`
}

// SessionRepository reads and writes the sessions table.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start records a new session.
func (r *SessionRepository) Start(id string, startedAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, startedAt.UTC(),
	)
	return err
}

// Finish stamps the end time, frame count and stop reason of a session.
func (r *SessionRepository) Finish(id string, endedAt time.Time, frames int64, reason string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, reason = ? WHERE id = ?`,
		endedAt.UTC(), frames, reason, id,
	)
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

// Get returns one session.
func (r *SessionRepository) Get(id string) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, frames, reason FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.StartedAt, &ended, &s.Frames, &s.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return s, nil
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, frames, reason FROM sessions
		 ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var ended sql.NullTime
		if err := rows.Scan(&s.ID, &s.StartedAt, &ended, &s.Frames, &s.Reason); err != nil {
			return nil, err
		}
		if ended.Valid {
			s.EndedAt = &ended.Time
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
