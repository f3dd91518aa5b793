package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/store"
)

// FlushResult summarizes one flush.
type FlushResult struct {
	Delivered int
	Dropped   int
	Pending   int
}

// Outbox queues records in the store and delivers them in order.
type Outbox struct {
	repo     *store.OutboxRepository
	reporter Reporter
	mu       sync.Mutex
}

// NewOutbox returns an outbox delivering through reporter.
func NewOutbox(repo *store.OutboxRepository, reporter Reporter) *Outbox {
	return &Outbox{repo: repo, reporter: reporter}
}

// Enqueue stores rec for delivery.
func (o *Outbox) Enqueue(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := o.repo.Enqueue(&store.OutboxEntry{Payload: data}); err != nil {
		return fmt.Errorf("enqueue progress: %w", err)
	}
	return nil
}

// Pending returns the number of undelivered records.
func (o *Outbox) Pending() (int, error) {
	return o.repo.Count()
}

// Flush delivers pending records oldest first. Records the endpoint rejects
// are dropped; any other failure stops the flush and leaves the rest queued.
// Concurrent flushes are serialized.
func (o *Outbox) Flush(ctx context.Context) (FlushResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var res FlushResult
	entries, err := o.repo.Pending(0)
	if err != nil {
		return res, fmt.Errorf("load outbox: %w", err)
	}
	res.Pending = len(entries)

	for _, e := range entries {
		var rec Record
		if err := json.Unmarshal(e.Payload, &rec); err != nil {
			log.WithField("id", e.ID).Warnf("Dropping unreadable progress record: %v", err)
			if err := o.repo.Delete(e.ID); err != nil {
				return res, fmt.Errorf("delete record %s: %w", e.ID, err)
			}
			res.Dropped++
			res.Pending--
			continue
		}

		_, err := o.reporter.Report(ctx, rec)
		switch {
		case err == nil:
			res.Delivered++
		case errors.Is(err, ErrRejected):
			log.WithFields(log.Fields{"id": e.ID, "exercise": rec.ExerciseName}).
				Warnf("Dropping rejected progress record: %v", err)
			res.Dropped++
		default:
			if markErr := o.repo.MarkFailed(e.ID, err); markErr != nil {
				log.Errorf("Failed to record delivery attempt: %v", markErr)
			}
			return res, fmt.Errorf("deliver record %s: %w", e.ID, err)
		}

		if err := o.repo.Delete(e.ID); err != nil {
			return res, fmt.Errorf("delete record %s: %w", e.ID, err)
		}
		res.Pending--
	}
	return res, nil
}
