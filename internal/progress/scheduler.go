package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// DefaultSchedule is how often the outbox is flushed.
const DefaultSchedule = "@every 30s"

// ValidateSchedule reports whether spec is a usable cron schedule.
func ValidateSchedule(spec string) error {
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler flushes an outbox on a cron schedule.
type Scheduler struct {
	outbox  *Outbox
	cron    *cron.Cron
	timeout time.Duration
	onFlush func(FlushResult, error)

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler builds a scheduler. onFlush, if set, is called after every flush.
func NewScheduler(spec string, outbox *Outbox, timeout time.Duration, onFlush func(FlushResult, error)) (*Scheduler, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		outbox:  outbox,
		cron:    cron.New(),
		timeout: timeout,
		onFlush: onFlush,
		ctx:     ctx,
		cancel:  cancel,
	}
	if err := s.cron.AddFunc(spec, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop ends the schedule, cancels an in-flight flush and waits for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cron.Stop()
	s.cancel()
	s.wg.Wait()
}

// FlushNow runs one flush outside the schedule.
func (s *Scheduler) FlushNow() {
	s.run()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	res, err := s.outbox.Flush(ctx)
	switch {
	case err != nil:
		log.Debugf("Progress flush stopped with %d pending: %v", res.Pending, err)
	case res.Delivered > 0 || res.Dropped > 0:
		log.Infof("Progress flush delivered %d, dropped %d", res.Delivered, res.Dropped)
	}
	if s.onFlush != nil {
		s.onFlush(res, err)
	}
}
