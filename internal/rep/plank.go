package rep

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// Plank times a forearm plank. The timer starts after OnsetFrames consecutive
// good frames and stops after TerminationFrames consecutive bad or unusable
// frames, so a single flicker never resets the clock.
type Plank struct {
	base
	p exercise.PlankParams

	good, bad   int
	holding     bool
	started     time.Time
	accumulated time.Duration
	holds       int
}

// NewPlank returns a plank detector. cfg.Plank must be set.
func NewPlank(cfg exercise.Config) *Plank {
	return &Plank{
		base: newBase(cfg, exercise.PhaseIdle, joints(armJoints, legJoints)),
		p:    *cfg.Plank,
	}
}

// Process implements Detector.
func (d *Plank) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		// Unusable frames only advance the termination debounce.
		if d.holding {
			d.good = 0
			d.bad++
			if d.bad >= d.p.TerminationFrames {
				d.stop(now)
				r.Phase = d.phase
			}
		}
		r.Hold = d.Hold(now)
		r.Holding = d.holding
		return r
	}

	valid, feedback, form := d.check(j)
	if valid {
		d.good++
		d.bad = 0
		if !d.holding && d.good >= d.p.OnsetFrames {
			d.holding = true
			d.started = now
			d.holds++
			d.phase = exercise.PhaseHolding
		}
	} else {
		d.bad++
		d.good = 0
		if d.holding && d.bad >= d.p.TerminationFrames {
			d.stop(now)
		}
	}

	hold := d.Hold(now)
	switch {
	case valid && d.holding:
		feedback = fmt.Sprintf("Great form! Hold it. %s", FormatHold(hold))
	case valid:
		feedback = fmt.Sprintf("Hold steady... %d/%d", d.good, d.p.OnsetFrames)
	}

	r = d.result(feedback)
	r.Form = form
	r.Hold = hold
	r.Holding = d.holding
	return r
}

// check returns whether the posture is a valid plank, the feedback for the
// first failing requirement and advisory form text.
func (d *Plank) check(j landmark.Joints) (bool, string, string) {
	s := j.Mid(landmark.LeftShoulder, landmark.RightShoulder)
	e := j.Mid(landmark.LeftElbow, landmark.RightElbow)
	w := j.Mid(landmark.LeftWrist, landmark.RightWrist)
	h := j.Mid(landmark.LeftHip, landmark.RightHip)
	k := j.Mid(landmark.LeftKnee, landmark.RightKnee)
	a := j.Mid(landmark.LeftAnkle, landmark.RightAnkle)

	var form string
	switch {
	case math.Abs(s.X-e.X) >= d.p.ShoulderOffset:
		form = "Stack your shoulders over your elbows"
	case math.Abs((a.Y-s.Y)/(a.X-s.X+0.001)) >= d.p.BodySlope:
		form = "Keep your body in a straight line"
	}

	hipDiff := h.Y - s.Y
	switch {
	case math.Abs(a.Y-s.Y) > math.Abs(a.X-s.X):
		return false, "Get down into a plank position", form
	case !(e.Y > s.Y && w.Y > e.Y):
		return false, "Get down on your forearms", form
	case k.Y >= a.Y-d.p.KneeClearance:
		return false, "Lift your knees off the ground", form
	case hipDiff > d.p.HipBand:
		return false, "Lift your hips, don't let them sag", form
	case hipDiff < -d.p.HipBand:
		return false, "Lower your hips", form
	}
	return true, "", form
}

func (d *Plank) stop(now time.Time) {
	d.accumulated += now.Sub(d.started)
	d.holding = false
	d.phase = exercise.PhaseIdle
}

// Hold returns the hold time accumulated in this set, including a running hold.
func (d *Plank) Hold(now time.Time) time.Duration {
	if d.holding {
		return d.accumulated + now.Sub(d.started)
	}
	return d.accumulated
}

// Holds returns how many separate holds were started in this set.
func (d *Plank) Holds() int {
	return d.holds
}

// Reset implements Detector.
func (d *Plank) Reset() {
	d.resetBase()
	d.good, d.bad = 0, 0
	d.holding = false
	d.accumulated = 0
	d.holds = 0
}

// FormatHold renders a duration as MM:SS.
func FormatHold(h time.Duration) string {
	secs := int(h / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
