package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is a queued payload awaiting delivery.
type OutboxEntry struct {
	ID        string
	Payload   json.RawMessage
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutboxRepository is a FIFO of undelivered payloads.
type OutboxRepository struct {
	db *sql.DB
}

// Outbox returns the outbox repository for this store.
func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{db: s.db}
}

// Enqueue appends an entry. An empty ID is filled with a UUID.
func (r *OutboxRepository) Enqueue(e *OutboxEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := r.db.Exec(
		`INSERT INTO progress_outbox (id, payload, attempts, last_error, created_at, updated_at)
		 VALUES (?, ?, 0, '', ?, ?)`,
		e.ID, string(e.Payload), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Pending returns up to limit entries in enqueue order. limit <= 0 means all.
func (r *OutboxRepository) Pending(limit int) ([]*OutboxEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, payload, attempts, last_error, created_at, updated_at
		 FROM progress_outbox ORDER BY seq LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*OutboxEntry
	for rows.Next() {
		e := &OutboxEntry{}
		var payload string
		if err := rows.Scan(&e.ID, &payload, &e.Attempts, &e.LastError, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a delivered entry.
func (r *OutboxRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM progress_outbox WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// MarkFailed records a failed delivery attempt.
func (r *OutboxRepository) MarkFailed(id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := r.db.Exec(
		`UPDATE progress_outbox SET attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`,
		msg, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Count returns the number of pending entries.
func (r *OutboxRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM progress_outbox`).Scan(&n)
	return n, err
}
