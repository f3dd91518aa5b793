package rep

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// Squat counts squats on the smoothed average knee angle. Hip depth is
// measured against the hip height last seen while standing tall.
type Squat struct {
	base
	p      exercise.SquatParams
	smooth *Smoother

	standingHipY float64
	haveBaseline bool
	notes        []string
}

// NewSquat returns a squat detector. cfg.Squat must be set.
func NewSquat(cfg exercise.Config) *Squat {
	d := &Squat{
		base:   newBase(cfg, exercise.PhaseUp, joints(legJoints, []landmark.Joint{landmark.LeftShoulder, landmark.RightShoulder})),
		p:      *cfg.Squat,
		smooth: NewSmoother(cfg.Squat.Smoothing),
	}
	return d
}

// Process implements Detector.
func (d *Squat) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	left, right := kneeAngles(j)
	raw := (left + right) / 2
	angle := d.smooth.Update(raw)
	hy := hipY(j)

	if d.phase == exercise.PhaseUp && raw > d.p.ExtensionAngle {
		d.standingHipY = hy
		d.haveBaseline = true
	}
	var depth float64
	if d.haveBaseline {
		depth = hy - d.standingHipY
	}

	var (
		counted  bool
		feedback string
	)
	switch d.phase {
	case exercise.PhaseUp:
		if angle < d.p.BendAngle && depth > d.p.DepthThreshold {
			d.phase = exercise.PhaseDown
			feedback = "Good depth, now stand up!"
		} else {
			feedback = "Squat down"
		}
	case exercise.PhaseDown:
		if angle > d.p.ExtensionAngle {
			d.phase = exercise.PhaseUp
			if d.cooledDown(now) {
				d.countRep(now)
				counted = true
				feedback = fmt.Sprintf("Squat rep %d!", d.reps)
			} else {
				feedback = "Slow down, control the movement"
			}
		} else {
			feedback = "Now stand up"
		}
	}

	r = d.result(feedback)
	r.RepDetected = counted
	r.Form = d.form(j, angle, left, right)
	return r
}

// Reset implements Detector.
func (d *Squat) Reset() {
	d.resetBase()
	d.smooth.Reset()
	d.haveBaseline = false
	d.notes = nil
}

// form builds advisory text. The depth note is the most frequent of the
// recent notes so single noisy frames do not flicker the message.
func (d *Squat) form(j landmark.Joints, angle, left, right float64) string {
	d.notes = append(d.notes, depthNote(angle))
	if n := d.p.FormHistory; n > 0 && len(d.notes) > n {
		d.notes = d.notes[len(d.notes)-n:]
	}

	parts := []string{mode(d.notes)}

	kneeWidth := math.Abs(j[landmark.LeftKnee].X - j[landmark.RightKnee].X)
	hipWidth := math.Abs(j[landmark.LeftHip].X - j[landmark.RightHip].X)
	if hipWidth > 1e-6 {
		switch ratio := kneeWidth / hipWidth; {
		case ratio < 0.6:
			parts = append(parts, "Knees caving in - push them out")
		case ratio > 1.4:
			parts = append(parts, "Knees too wide")
		}
	}
	if torsoLean(j) > 35 {
		parts = append(parts, "Chest up!")
	}
	if math.Abs(left-right) > 20 {
		parts = append(parts, "Balance both legs")
	}
	return strings.Join(parts, ". ")
}

func depthNote(angle float64) string {
	switch {
	case angle > 140:
		return "Ready position"
	case angle > 130:
		return "Go deeper"
	case angle < 70:
		return "Too deep"
	case angle <= 90:
		return "Perfect depth!"
	default:
		return "Good depth"
	}
}

// mode returns the most frequent note, preferring the most recent on ties.
func mode(notes []string) string {
	counts := make(map[string]int, len(notes))
	for _, n := range notes {
		counts[n]++
	}
	best := ""
	for i := len(notes) - 1; i >= 0; i-- {
		if counts[notes[i]] > counts[best] {
			best = notes[i]
		}
	}
	return best
}
