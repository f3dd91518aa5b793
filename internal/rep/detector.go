// Package rep turns landmark frames into repetitions and form feedback.
//
// Each Detector owns the state of one exercise session. Process must be
// called from a single goroutine with frames in arrival order.
package rep

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

const (
	FeedbackNoPerson   = "No person detected. Step into the camera view."
	FeedbackReposition = "Please reposition so your whole body is visible."
)

// Result is the outcome of processing one frame.
type Result struct {
	Phase       exercise.Phase
	RepDetected bool
	PartialRep  bool
	Reps        int
	PartialReps int
	Feedback    string
	// Form is advisory form text. It never gates counting.
	Form string
	// Hold is the accumulated hold time for timed exercises.
	Hold    time.Duration
	Holding bool
	// Reposition is set when the frame was unusable and state was left unchanged.
	Reposition bool
}

// Detector is a per-session state machine for one exercise archetype.
type Detector interface {
	// Process consumes one frame observed at now.
	Process(f landmark.Frame, now time.Time) Result
	// Reset clears per-set state ahead of the next set.
	Reset()
	// Config returns the exercise the detector was built for.
	Config() exercise.Config
}

// New builds the detector for cfg's archetype.
func New(cfg exercise.Config) (Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Archetype {
	case exercise.KneeLift:
		return NewKneeLift(cfg), nil
	case exercise.Squat:
		return NewSquat(cfg), nil
	case exercise.PushUp:
		return NewPushUp(cfg), nil
	case exercise.Burpee:
		return NewBurpee(cfg), nil
	case exercise.Lunge:
		return NewLunge(cfg), nil
	case exercise.Plank:
		return NewPlank(cfg), nil
	case exercise.JumpSquat:
		return NewJumpSquat(cfg), nil
	}
	return nil, fmt.Errorf("%w: no detector for %q", exercise.ErrInvalidConfig, cfg.Archetype)
}

// base carries the state every detector shares.
type base struct {
	cfg      exercise.Config
	required []landmark.Joint
	initial  exercise.Phase

	phase    exercise.Phase
	reps     int
	partials int
	lastRep  time.Time
}

func newBase(cfg exercise.Config, initial exercise.Phase, required []landmark.Joint) base {
	return base{cfg: cfg, required: required, initial: initial, phase: initial}
}

func (b *base) Config() exercise.Config { return b.cfg }

func (b *base) resetBase() {
	b.phase = b.initial
	b.reps = 0
	b.partials = 0
	b.lastRep = time.Time{}
}

// joints extracts the required joints. When the frame is unusable it returns
// the reposition result and false; the caller must return it untouched.
func (b *base) joints(f landmark.Frame) (landmark.Joints, Result, bool) {
	j, err := landmark.Extract(f, b.cfg.Joints, b.required)
	if err != nil {
		msg := FeedbackReposition
		if errors.Is(err, landmark.ErrNoPerson) {
			msg = FeedbackNoPerson
		}
		r := b.result(msg)
		r.Reposition = true
		return nil, r, false
	}
	return j, Result{}, true
}

func (b *base) result(feedback string) Result {
	return Result{
		Phase:       b.phase,
		Reps:        b.reps,
		PartialReps: b.partials,
		Feedback:    feedback,
	}
}

func (b *base) cooledDown(now time.Time) bool {
	return b.lastRep.IsZero() || now.Sub(b.lastRep) >= b.cfg.Cooldown
}

func (b *base) countRep(now time.Time) {
	b.reps++
	b.lastRep = now
}
