package rep

import (
	"fmt"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// PushUp counts push-ups on the average elbow angle and the shoulder drop
// below the top position. A dip into the partial band that returns to full
// extension without reaching the bend threshold counts as a partial rep only.
type PushUp struct {
	base
	p exercise.PushUpParams

	topShoulderY float64
	haveTop      bool
	minElbow     float64
}

// NewPushUp returns a push-up detector. cfg.PushUp must be set.
func NewPushUp(cfg exercise.Config) *PushUp {
	d := &PushUp{
		base: newBase(cfg, exercise.PhaseUp, joints(armJoints, []landmark.Joint{
			landmark.LeftHip, landmark.RightHip, landmark.LeftKnee, landmark.RightKnee,
		})),
		p: *cfg.PushUp,
	}
	d.Reset()
	return d
}

// Process implements Detector.
func (d *PushUp) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	left, right := elbowAngles(j)
	elbow := (left + right) / 2
	sy := shoulderY(j)

	if d.phase == exercise.PhaseUp && elbow > d.p.ExtensionAngle {
		d.topShoulderY = sy
		d.haveTop = true
	}
	var drop float64
	if d.haveTop {
		drop = sy - d.topShoulderY
	}

	var (
		counted, partial bool
		feedback         string
	)
	switch d.phase {
	case exercise.PhaseUp:
		switch {
		case elbow < d.p.BendAngle && drop >= d.p.ShoulderDrop:
			d.phase = exercise.PhaseDown
			d.minElbow = 180
			feedback = "Good depth, now push up!"
		case elbow <= d.p.ExtensionAngle:
			d.minElbow = min(d.minElbow, elbow)
			feedback = "Go lower"
		default:
			if d.minElbow < d.p.PartialAngle {
				d.partials++
				partial = true
				feedback = "Partial rep - go lower"
			} else {
				feedback = "Lower your chest"
			}
			d.minElbow = 180
		}
	case exercise.PhaseDown:
		if elbow > d.p.ExtensionAngle {
			d.phase = exercise.PhaseUp
			if d.cooledDown(now) {
				d.countRep(now)
				counted = true
				feedback = fmt.Sprintf("Push-up rep %d!", d.reps)
			} else {
				feedback = "Slow down, control the movement"
			}
		} else {
			feedback = "Push up higher"
		}
	}

	r = d.result(feedback)
	r.RepDetected = counted
	r.PartialRep = partial
	back := (j.Angle(landmark.LeftShoulder, landmark.LeftHip, landmark.LeftKnee) +
		j.Angle(landmark.RightShoulder, landmark.RightHip, landmark.RightKnee)) / 2
	if back < d.p.BackAngle {
		r.Form = "Keep your back straight"
	}
	return r
}

// Reset implements Detector.
func (d *PushUp) Reset() {
	d.resetBase()
	d.haveTop = false
	d.minElbow = 180
}
