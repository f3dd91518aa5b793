package rep

import (
	"fmt"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// JumpSquat follows standing -> descending -> squatting -> jumping -> landing.
// The rep counts on the explosive squat-to-jump transition; landing only
// closes the cycle.
type JumpSquat struct {
	base
	p exercise.JumpSquatParams

	lastHipY float64
	haveLast bool
}

// NewJumpSquat returns a jump-squat detector. cfg.JumpSquat must be set.
func NewJumpSquat(cfg exercise.Config) *JumpSquat {
	return &JumpSquat{
		base: newBase(cfg, exercise.PhaseStanding, legJoints),
		p:    *cfg.JumpSquat,
	}
}

// Process implements Detector.
func (d *JumpSquat) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	left, right := kneeAngles(j)
	knee := (left + right) / 2
	hy := hipY(j)
	var rise float64
	if d.haveLast {
		rise = d.lastHipY - hy
	}
	d.lastHipY = hy
	d.haveLast = true

	var (
		counted  bool
		feedback string
	)
	switch d.phase {
	case exercise.PhaseStanding:
		feedback = "Lower into a squat"
		if knee < d.p.DescendAngle {
			d.phase = exercise.PhaseDescending
			feedback = "Keep going down"
		}
	case exercise.PhaseDescending:
		feedback = "Keep going down"
		switch {
		case knee <= d.p.SquatAngle:
			d.phase = exercise.PhaseSquatting
			feedback = "Now explode up!"
		case knee > d.p.DescendAngle:
			d.phase = exercise.PhaseStanding
			feedback = "Go lower before you jump"
		}
	case exercise.PhaseSquatting:
		feedback = "Now explode up!"
		switch {
		case rise > d.p.RiseDelta && knee > d.p.AscendAngle:
			d.phase = exercise.PhaseJumping
			if d.cooledDown(now) {
				d.countRep(now)
				counted = true
				feedback = fmt.Sprintf("Jump squat rep %d!", d.reps)
			} else {
				feedback = "Reset before the next jump"
			}
		case knee >= d.p.StandingAngle:
			d.phase = exercise.PhaseStanding
			feedback = "Too slow, drive up explosively"
		}
	case exercise.PhaseJumping:
		feedback = "Land softly"
		if -rise > d.p.FallDelta {
			d.phase = exercise.PhaseLanding
		}
	case exercise.PhaseLanding:
		feedback = "Land softly"
		switch {
		case knee >= d.p.StandingAngle:
			d.phase = exercise.PhaseStanding
			feedback = "Good landing! Ready for the next one"
		case knee < d.p.SquatAngle:
			d.phase = exercise.PhaseDescending
			feedback = "Absorb the landing"
		}
	}

	r = d.result(feedback)
	r.RepDetected = counted
	return r
}

// Reset implements Detector.
func (d *JumpSquat) Reset() {
	d.resetBase()
	d.haveLast = false
}
