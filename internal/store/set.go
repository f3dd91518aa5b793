package store

import (
	"database/sql"
	"time"
)

// SetResult is one completed set.
type SetResult struct {
	ID          int64         `json:"id"`
	SessionID   string        `json:"sessionId"`
	SetIndex    int           `json:"setIndex"`
	Reps        int           `json:"reps"`
	PartialReps int           `json:"partialReps"`
	Hold        time.Duration `json:"hold"`
	CompletedAt time.Time     `json:"completedAt"`
}

// SetRepository stores completed sets.
type SetRepository struct {
	db *sql.DB
}

// Sets returns the set repository for this store.
func (s *Store) Sets() *SetRepository {
	return &SetRepository{db: s.db}
}

// Create inserts a set result.
func (r *SetRepository) Create(sr *SetResult) error {
	if sr.CompletedAt.IsZero() {
		sr.CompletedAt = time.Now()
	}
	res, err := r.db.Exec(
		`INSERT INTO set_results (session_id, set_index, reps, partial_reps, hold_ms, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sr.SessionID, sr.SetIndex, sr.Reps, sr.PartialReps, sr.Hold.Milliseconds(), sr.CompletedAt,
	)
	if err != nil {
		return err
	}
	sr.ID, err = res.LastInsertId()
	return err
}

// ListBySession returns a session's sets in order.
func (r *SetRepository) ListBySession(sessionID string) ([]*SetResult, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, set_index, reps, partial_reps, hold_ms, completed_at
		 FROM set_results WHERE session_id = ? ORDER BY set_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*SetResult
	for rows.Next() {
		sr := &SetResult{}
		var holdMs int64
		if err := rows.Scan(&sr.ID, &sr.SessionID, &sr.SetIndex, &sr.Reps, &sr.PartialReps, &holdMs, &sr.CompletedAt); err != nil {
			return nil, err
		}
		sr.Hold = time.Duration(holdMs) * time.Millisecond
		sets = append(sets, sr)
	}
	return sets, rows.Err()
}
