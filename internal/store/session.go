package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a stored session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusStopped   SessionStatus = "stopped"
)

// Session is a workout session row.
type Session struct {
	ID            string        `json:"id"`
	Exercise      string        `json:"exercise"`
	Archetype     string        `json:"archetype"`
	UserEmail     string        `json:"userEmail,omitempty"`
	TargetReps    int           `json:"targetReps"`
	TotalSets     int           `json:"totalSets"`
	Status        SessionStatus `json:"status"`
	TotalReps     int           `json:"totalReps"`
	PartialReps   int           `json:"partialReps"`
	SetsCompleted int           `json:"setsCompleted"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
}

// SessionRepository stores workout sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, exercise, archetype, user_email, target_reps, total_sets, status,
	total_reps, partial_reps, sets_completed, started_at, ended_at`

// Create inserts a new active session. An empty ID is filled with a UUID.
func (r *SessionRepository) Create(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.Status == "" {
		s.Status = StatusActive
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Exercise, s.Archetype, s.UserEmail, s.TargetReps, s.TotalSets, string(s.Status),
		s.TotalReps, s.PartialReps, s.SetsCompleted, s.StartedAt, nullTime(s.EndedAt),
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// UpdateProgress records running totals for an active session.
func (r *SessionRepository) UpdateProgress(id string, totalReps, partialReps, setsCompleted int) error {
	res, err := r.db.Exec(
		`UPDATE sessions SET total_reps = ?, partial_reps = ?, sets_completed = ? WHERE id = ?`,
		totalReps, partialReps, setsCompleted, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Finish closes a session with its final status and totals.
func (r *SessionRepository) Finish(id string, status SessionStatus, totalReps, partialReps, setsCompleted int, endedAt time.Time) error {
	res, err := r.db.Exec(
		`UPDATE sessions SET status = ?, total_reps = ?, partial_reps = ?, sets_completed = ?, ended_at = ?
		 WHERE id = ?`,
		string(status), totalReps, partialReps, setsCompleted, endedAt, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// List returns the most recent sessions, newest first. limit <= 0 means 50.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY rowid DESC LIMIT ?`, limit,
	)
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
	return sessions, rows.Err()
}

// AbandonActive marks sessions left active by an earlier process as stopped.
func (r *SessionRepository) AbandonActive(at time.Time) (int64, error) {
	res, err := r.db.Exec(
		`UPDATE sessions SET status = ?, ended_at = ? WHERE status = ?`,
		string(StatusStopped), at, string(StatusActive),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var status string
	var ended sql.NullTime
	err := row.Scan(&s.ID, &s.Exercise, &s.Archetype, &s.UserEmail, &s.TargetReps, &s.TotalSets,
		&status, &s.TotalReps, &s.PartialReps, &s.SetsCompleted, &s.StartedAt, &ended)
	if err != nil {
		return nil, err
	}
	s.Status = SessionStatus(status)
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
