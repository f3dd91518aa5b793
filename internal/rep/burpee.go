package rep

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// Burpee tracks standing -> squatting -> pushup -> returning -> jumping ->
// standing. Every transition needs the target posture for more than
// MinDwellFrames consecutive frames. Finishing with a phase skipped counts a
// partial rep.
type Burpee struct {
	base
	p exercise.BurpeeParams

	// consecutive frames in each posture
	squatting, plank, airborne, standing int

	pushUpFrames int
	floorY       float64

	squatted, pushedUp, returned, jumped bool
}

// NewBurpee returns a burpee detector. cfg.Burpee must be set.
func NewBurpee(cfg exercise.Config) *Burpee {
	d := &Burpee{
		base: newBase(cfg, exercise.PhaseStanding, joints(armJoints, legJoints)),
		p:    *cfg.Burpee,
	}
	return d
}

// Process implements Detector.
func (d *Burpee) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	kl, kr := kneeAngles(j)
	knee := (kl + kr) / 2
	el, er := elbowAngles(j)
	elbow := (el + er) / 2
	sy, hy, ay := shoulderY(j), hipY(j), ankleY(j)
	wy := j.Mid(landmark.LeftWrist, landmark.RightWrist).Y

	d.floorY = math.Max(d.floorY, ay)
	upright := hy-sy > d.p.PlankTolerance
	isJumping := upright && knee > d.p.ExtensionAngle && d.floorY-ay > d.p.JumpHeight
	isStanding := upright && knee > d.p.StandingAngle
	isSquatting := upright && knee < d.p.SquatAngle
	isPushUp := wy > sy && math.Abs(sy-hy) < d.p.PlankTolerance

	d.squatting = streak(d.squatting, isSquatting)
	d.plank = streak(d.plank, isPushUp)
	d.airborne = streak(d.airborne, isJumping)
	d.standing = streak(d.standing, isStanding && !isJumping)
	dwell := d.p.MinDwellFrames

	var (
		counted, partial bool
		feedback         string
	)
	switch d.phase {
	case exercise.PhaseStanding:
		feedback = "Squat down and place your hands on the floor"
		if d.squatting > dwell {
			d.phase = exercise.PhaseSquatting
			d.squatted = true
			feedback = "Good squat! Now kick back"
		}
	case exercise.PhaseSquatting:
		feedback = "Kick your feet back"
		if !d.p.RequirePushUp {
			feedback = "Jump up!"
		}
		switch {
		case d.plank > dwell:
			d.phase = exercise.PhasePushUp
			d.pushUpFrames = 0
			feedback = "Now do a push-up"
		case d.airborne > dwell:
			d.phase = exercise.PhaseJumping
			d.jumped = true
			feedback = "Great jump!"
		case d.standing > d.p.JumpDwellFrames:
			counted, partial, feedback = d.finish(now)
		}
	case exercise.PhasePushUp:
		feedback = "Lower your chest"
		if elbow < d.p.PushUpElbowAngle {
			d.pushUpFrames++
			if d.pushUpFrames >= d.p.PushUpFrames {
				d.pushedUp = true
				feedback = "Push-up done! Jump your feet in"
			}
		}
		switch {
		case d.squatting > dwell:
			d.phase = exercise.PhaseReturning
			d.returned = true
			feedback = "Now jump!"
			if !d.pushedUp {
				feedback = "Push-up skipped, this one counts as partial"
			}
		case d.airborne > dwell:
			d.phase = exercise.PhaseJumping
			d.jumped = true
			feedback = "Great jump!"
		case d.standing > d.p.JumpDwellFrames:
			counted, partial, feedback = d.finish(now)
		}
	case exercise.PhaseReturning:
		feedback = "Jump up!"
		switch {
		case d.airborne > dwell:
			d.phase = exercise.PhaseJumping
			d.jumped = true
			feedback = "Great jump!"
		case d.standing > d.p.JumpDwellFrames:
			counted, partial, feedback = d.finish(now)
		}
	case exercise.PhaseJumping:
		feedback = "Land softly"
		switch {
		case d.standing > d.p.JumpDwellFrames:
			counted, partial, feedback = d.finish(now)
		case d.squatting > dwell:
			d.partials++
			partial = true
			d.clearProgress()
			d.phase = exercise.PhaseSquatting
			d.squatted = true
			feedback = "Partial burpee - stand tall between reps"
		}
	}

	r = d.result(feedback)
	r.RepDetected = counted
	r.PartialRep = partial
	switch {
	case d.phase == exercise.PhasePushUp && j.Angle(landmark.LeftShoulder, landmark.LeftHip, landmark.LeftKnee) < 150:
		r.Form = "Keep your body straight, don't let your hips sag"
	case d.phase == exercise.PhaseSquatting && knee > d.p.SquatAngle+10:
		r.Form = "Squat deeper"
	}
	return r
}

// finish closes a burpee attempt and returns to standing.
func (d *Burpee) finish(now time.Time) (counted, partial bool, feedback string) {
	full := d.squatted && d.jumped && (!d.p.RequirePushUp || (d.pushedUp && d.returned))
	d.clearProgress()
	d.phase = exercise.PhaseStanding

	switch {
	case full && d.cooledDown(now):
		d.countRep(now)
		return true, false, fmt.Sprintf("Burpee rep %d!", d.reps)
	case full:
		return false, false, "Too fast, take a breath"
	default:
		d.partials++
		return false, true, "Partial burpee - complete every phase"
	}
}

func streak(n int, hit bool) int {
	if hit {
		return n + 1
	}
	return 0
}

func (d *Burpee) clearProgress() {
	d.squatted, d.pushedUp, d.returned, d.jumped = false, false, false, false
	d.pushUpFrames = 0
}

// Reset implements Detector. The learned floor line is kept.
func (d *Burpee) Reset() {
	d.resetBase()
	d.squatting, d.plank, d.airborne, d.standing = 0, 0, 0, 0
	d.clearProgress()
}
