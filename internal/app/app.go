// Package app wires capture, pose estimation and rep counting into one
// workout at a time and fans session events out to storage, metrics,
// progress reporting and live clients.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
	"github.com/ayusman/repcount/internal/metrics"
	"github.com/ayusman/repcount/internal/pose"
	"github.com/ayusman/repcount/internal/progress"
	"github.com/ayusman/repcount/internal/session"
	"github.com/ayusman/repcount/internal/store"
)

// ErrInvalidRequest is returned when a start request cannot form a workout.
var ErrInvalidRequest = errors.New("invalid workout request")

// Request asks for a workout.
type Request struct {
	Exercise string `json:"exercise"`
	Sets     int    `json:"sets"`
	Reps     int    `json:"reps"`
	// TargetSeconds is the per-set hold target for timed exercises. Reps is
	// used when it is zero.
	TargetSeconds int    `json:"targetSeconds,omitempty"`
	User          string `json:"user,omitempty"`
}

// Status describes the active workout.
type Status struct {
	SessionID string        `json:"sessionId"`
	Exercise  string        `json:"exercise"`
	Archetype string        `json:"archetype"`
	Warning   string        `json:"warning,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Progress  session.Event `json:"progress"`
}

// Broadcaster pushes events to live clients.
type Broadcaster interface {
	Broadcast(v any)
}

// Notifier is told about every status change. A nil status means idle.
type Notifier interface {
	Update(st *Status)
}

// Flusher delivers queued progress records now.
type Flusher interface {
	FlushNow()
}

// Config holds the application collaborators. Only Registry is required.
type Config struct {
	Registry *exercise.Registry
	Store    *store.Store
	Outbox   *progress.Outbox
	Flusher  Flusher
	Metrics  *metrics.Manager
	Hub      Broadcaster
	Notifier Notifier

	// Camera and Estimator, when both set, feed frames to every session.
	Camera    capture.Camera
	Estimator pose.Estimator

	Rest      time.Duration
	QueueSize int
	// User is the default progress user when a request names none.
	User string

	SessionOptions []session.Option
}

// App runs at most one workout session.
type App struct {
	cfg     Config
	metrics *metrics.Manager

	mu      sync.Mutex
	current *run
	wg      sync.WaitGroup
}

type run struct {
	sess   *session.Session
	cfg    exercise.Config
	status Status
	user   string
	cancel context.CancelFunc
	done   chan struct{}

	capture sync.WaitGroup

	// Owned by the session goroutine.
	setsLogged     int
	partialsLogged int
}

// New creates an App.
func New(cfg Config) *App {
	if cfg.Rest <= 0 {
		cfg.Rest = session.DefaultRest
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = session.DefaultQueueSize
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &App{cfg: cfg, metrics: m}
}

// Registry returns the exercise registry.
func (a *App) Registry() *exercise.Registry {
	return a.cfg.Registry
}

// Start begins a workout. Unknown exercise names fall back to the default
// exercise and the returned status carries a warning.
func (a *App) Start(ctx context.Context, req Request) (*Status, error) {
	cfg, fellBack := a.cfg.Registry.Lookup(req.Exercise)
	plan, err := a.plan(cfg, req)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		return nil, session.ErrSessionActive
	}

	r := &run{cfg: cfg, user: req.User, done: make(chan struct{})}
	if r.user == "" {
		r.user = a.cfg.User
	}

	opts := append([]session.Option{
		session.WithQueueSize(a.cfg.QueueSize),
		session.WithSink(a.sink(r)),
	}, a.cfg.SessionOptions...)
	sess, err := session.New(uuid.NewString(), cfg, plan, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	r.sess = sess
	r.status = Status{
		SessionID: sess.ID(),
		Exercise:  cfg.Name,
		Archetype: string(cfg.Archetype),
		StartedAt: sess.Started(),
		Progress:  sess.Last(),
	}
	if fellBack {
		r.status.Warning = fmt.Sprintf("unknown exercise %q, tracking %q instead", req.Exercise, cfg.Name)
	}

	if a.cfg.Store != nil {
		err := a.cfg.Store.Sessions().Create(&store.Session{
			ID:         sess.ID(),
			Exercise:   cfg.Name,
			Archetype:  string(cfg.Archetype),
			UserEmail:  r.user,
			TargetReps: plan.TargetReps,
			TotalSets:  plan.TotalSets,
			StartedAt:  sess.Started(),
		})
		if err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	a.current = r
	a.metrics.GaugeActiveSessions.Inc()

	if a.cfg.Camera != nil && a.cfg.Estimator != nil {
		r.capture.Add(1)
		go func() {
			defer r.capture.Done()
			a.runCapture(runCtx, r.sess)
		}()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := sess.Run(runCtx)
		a.finish(r, err)
	}()

	log.WithFields(log.Fields{
		"session":  sess.ID(),
		"exercise": cfg.Name,
		"sets":     plan.TotalSets,
		"target":   plan.TargetReps,
	}).Info("Workout started")

	st := r.status
	a.notify(&st)
	return &st, nil
}

func (a *App) plan(cfg exercise.Config, req Request) (session.Plan, error) {
	target := req.Reps
	if cfg.Hold() && req.TargetSeconds > 0 {
		target = req.TargetSeconds
	}
	plan := session.Plan{TargetReps: target, TotalSets: req.Sets, Rest: a.cfg.Rest}
	if err := plan.Validate(); err != nil {
		return plan, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return plan, nil
}

// Submit queues a frame for the active session.
func (a *App) Submit(f landmark.Frame) error {
	a.mu.Lock()
	r := a.current
	a.mu.Unlock()
	if r == nil {
		return session.ErrNoSession
	}
	a.submit(r.sess, f)
	return nil
}

func (a *App) submit(s *session.Session, f landmark.Frame) {
	if s.Submit(f) {
		a.metrics.CounterDropped.Inc()
	}
}

// Status returns the active workout.
func (a *App) Status() (*Status, error) {
	a.mu.Lock()
	r := a.current
	a.mu.Unlock()
	if r == nil {
		return nil, session.ErrNoSession
	}
	st := r.status
	st.Progress = r.sess.Last()
	return &st, nil
}

// Stop ends the active workout and waits for it to wind down.
func (a *App) Stop() (*Status, error) {
	a.mu.Lock()
	r := a.current
	a.mu.Unlock()
	if r == nil {
		return nil, session.ErrNoSession
	}

	r.cancel()
	<-r.done
	st := r.status
	st.Progress = r.sess.Last()
	return &st, nil
}

// Done returns a channel closed when the active workout ends, or nil when idle.
func (a *App) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return a.current.done
}

// Close stops any workout and releases the camera and estimator.
func (a *App) Close() error {
	if _, err := a.Stop(); err != nil && !errors.Is(err, session.ErrNoSession) {
		return err
	}
	a.wg.Wait()

	var err error
	if a.cfg.Camera != nil {
		err = multierr.Append(err, a.cfg.Camera.Close())
	}
	if a.cfg.Estimator != nil {
		err = multierr.Append(err, a.cfg.Estimator.Close())
	}
	return err
}

func (a *App) finish(r *run, runErr error) {
	r.cancel()
	r.capture.Wait()

	var closeErr error
	if a.cfg.Camera != nil && a.cfg.Estimator != nil {
		closeErr = a.cfg.Camera.Close()
	}

	p := r.sess.Progress()
	status := store.StatusCompleted
	if runErr != nil {
		status = store.StatusStopped
	}
	if a.cfg.Store != nil {
		err := a.cfg.Store.Sessions().Finish(r.sess.ID(), status, p.TotalReps, p.PartialReps, r.setsLogged, time.Now())
		closeErr = multierr.Append(closeErr, err)
	}
	if closeErr != nil {
		log.WithField("session", r.sess.ID()).Errorf("Finishing workout: %v", closeErr)
	}

	a.mu.Lock()
	if a.current == r {
		a.current = nil
	}
	a.mu.Unlock()
	a.metrics.GaugeActiveSessions.Dec()

	log.WithFields(log.Fields{
		"session": r.sess.ID(),
		"status":  status,
		"reps":    p.TotalReps,
		"partial": p.PartialReps,
		"dropped": r.sess.Dropped(),
	}).Info("Workout ended")

	a.notify(nil)
	close(r.done)
}

func (a *App) notify(st *Status) {
	if a.cfg.Notifier != nil {
		a.cfg.Notifier.Update(st)
	}
}
