package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
	"github.com/ayusman/repcount/internal/rep"
)

var (
	// ErrNoSession is returned when an operation needs an active session.
	ErrNoSession = errors.New("no active session")
	// ErrSessionActive is returned when a session is started while another runs.
	ErrSessionActive = errors.New("a session is already active")
)

const (
	// DefaultQueueSize bounds frames waiting for the detector.
	DefaultQueueSize = 4
	restTick         = time.Second
)

// Sink receives every event a session produces. It is called from the
// session goroutine and must not block for long.
type Sink func(Event)

// Option configures a Session.
type Option func(*Session)

// WithQueueSize sets the frame queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.frames = make(chan landmark.Frame, n)
		}
	}
}

// WithTick sets the wall-clock interval of one rest second.
func WithTick(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithClock sets the clock used for frames that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSink sets the event sink.
func WithSink(sink Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// Session is one running workout. Frames are submitted from any goroutine and
// processed by Run in arrival order. When the queue is full the oldest
// waiting frame is dropped.
type Session struct {
	id       string
	cfg      exercise.Config
	detector rep.Detector
	agg      *Aggregator

	frames   chan landmark.Frame
	submitMu sync.Mutex
	dropped  atomic.Uint64

	sink Sink
	tick time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	progress Progress
	last     Event
	started  time.Time
	done     chan struct{}
	running  atomic.Bool
}

// New creates a session for cfg. The session does nothing until Run is called.
func New(id string, cfg exercise.Config, plan Plan, opts ...Option) (*Session, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	d, err := rep.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build detector: %w", err)
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		detector: d,
		agg:      NewAggregator(plan, cfg.Hold()),
		frames:   make(chan landmark.Frame, DefaultQueueSize),
		tick:     restTick,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	s.progress = s.agg.Progress()
	s.last = newEvent(KindTick, id, cfg.Name, s.progress, s.started)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Exercise returns the exercise being tracked.
func (s *Session) Exercise() exercise.Config { return s.cfg }

// Started returns when the session was created.
func (s *Session) Started() time.Time { return s.started }

// Submit queues a frame. It never blocks and reports whether an older frame
// was dropped to make room.
func (s *Session) Submit(f landmark.Frame) (dropped bool) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	select {
	case s.frames <- f:
		return false
	default:
	}
	select {
	case <-s.frames:
	default:
	}
	s.dropped.Add(1)
	select {
	case s.frames <- f:
	default:
	}
	return true
}

// Dropped returns how many frames were discarded because the queue was full.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Progress returns the latest progress snapshot.
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Last returns the most recent event.
func (s *Session) Last() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run processes frames until the workout completes or ctx is cancelled.
// It returns nil on completion and ctx.Err() on cancellation. Run must be
// called at most once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session already running")
	}
	defer close(s.done)

	logger := log.WithFields(log.Fields{"session": s.id, "exercise": s.cfg.Name})
	logger.Info("Session started")

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			s.detector.Reset()
			logger.Info("Session cancelled")
			return ctx.Err()

		case f := <-s.frames:
			ev := s.process(f)
			if ev.SetComplete && ticker == nil {
				logger.WithField("set", ev.SetIndex).Info("Set complete")
				ticker = time.NewTicker(s.tick)
				tickC = ticker.C
			}
			s.emit(ev)

		case <-tickC:
			ev := s.restTick()
			if !ev.Resting {
				stopTicker()
			}
			s.emit(ev)
			if ev.WorkoutComplete {
				logger.WithField("reps", ev.TotalReps).Info("Workout complete")
				return nil
			}
		}
	}
}

func (s *Session) process(f landmark.Frame) Event {
	at := f.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	if !s.agg.Accepting() {
		p := s.agg.Progress()
		ev := newEvent(KindFrame, s.id, s.cfg.Name, p, at)
		ev.Feedback = restFeedback(p)
		return ev
	}

	began := time.Now()
	r := s.detector.Process(f, at)
	s.agg.Record(r)
	ev := newEvent(KindFrame, s.id, s.cfg.Name, s.agg.Progress(), at)
	ev.apply(r)
	ev.Latency = time.Since(began)
	if ev.SetComplete {
		ev.Feedback = fmt.Sprintf("Set %d complete! Rest for %ds.", ev.SetIndex, ev.RestSeconds)
	}
	return ev
}

func (s *Session) restTick() Event {
	if s.agg.Tick() {
		s.detector.Reset()
	}
	p := s.agg.Progress()
	ev := newEvent(KindTick, s.id, s.cfg.Name, p, s.now())
	switch {
	case p.WorkoutComplete:
		ev.Feedback = "Workout complete!"
	case p.Resting:
		ev.Feedback = restFeedback(p)
	default:
		ev.Feedback = fmt.Sprintf("Set %d of %d - go!", p.CurrentSet, p.TotalSets)
	}
	return ev
}

func restFeedback(p Progress) string {
	if p.WorkoutComplete {
		return "Workout complete!"
	}
	return fmt.Sprintf("Rest: %ds", int(p.RestRemaining/time.Second))
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	s.progress = s.agg.Progress()
	s.last = ev
	s.mu.Unlock()

	if s.sink != nil {
		s.sink(ev)
	}
}
