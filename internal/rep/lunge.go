package rep

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

// Lunge counts a rep when a lunge position is held for at least MinHold and
// then released. Shorter holds are discarded.
type Lunge struct {
	base
	p exercise.LungeParams

	start    time.Time
	sinceRep int
	stats    LungeStats
}

// LungeStats summarizes the counted holds of the current set.
type LungeStats struct {
	Holds int
	Last  time.Duration
	Total time.Duration
}

// Average returns the mean counted hold.
func (s LungeStats) Average() time.Duration {
	if s.Holds == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Holds)
}

// NewLunge returns a lunge detector. cfg.Lunge must be set.
func NewLunge(cfg exercise.Config) *Lunge {
	d := &Lunge{
		base: newBase(cfg, exercise.PhaseStanding, joints(legJoints, []landmark.Joint{landmark.Nose})),
		p:    *cfg.Lunge,
	}
	d.Reset()
	return d
}

// Process implements Detector.
func (d *Lunge) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	left, right := kneeAngles(j)
	separation := math.Abs(j[landmark.LeftAnkle].X - j[landmark.RightAnkle].X)
	inLunge := math.Min(left, right) < d.p.FrontKneeAngle &&
		math.Abs(left-right) > d.p.Asymmetry &&
		separation > d.p.FootSeparation

	d.sinceRep++

	var (
		counted  bool
		feedback string
		form     string
	)
	switch d.phase {
	case exercise.PhaseStanding:
		switch {
		case inLunge && d.sinceRep > d.p.GapFrames:
			d.phase = exercise.PhaseLunging
			d.start = now
			feedback = "Hold the lunge!"
			form = d.form(j, left, right)
		case inLunge:
			feedback = "Stand up fully before the next rep"
		default:
			feedback = "Step forward into a lunge"
		}
	case exercise.PhaseLunging:
		held := now.Sub(d.start)
		if inLunge {
			feedback = fmt.Sprintf("Holding %.1fs", held.Seconds())
			form = d.form(j, left, right)
			break
		}
		d.phase = exercise.PhaseStanding
		switch {
		case held < d.p.MinHold:
			feedback = fmt.Sprintf("Hold longer! Minimum %.0fs required (held %.1fs)", d.p.MinHold.Seconds(), held.Seconds())
		case d.cooledDown(now):
			d.countRep(now)
			d.sinceRep = 0
			d.stats.Holds++
			d.stats.Last = held
			d.stats.Total += held
			counted = true
			feedback = fmt.Sprintf("Lunge rep %d! Held %.1fs", d.reps, held.Seconds())
		default:
			feedback = "Slow down between reps"
		}
	}

	r = d.result(feedback)
	r.RepDetected = counted
	r.Form = form
	if d.phase == exercise.PhaseLunging {
		r.Hold = now.Sub(d.start)
		r.Holding = true
	}
	return r
}

func (d *Lunge) form(j landmark.Joints, left, right float64) string {
	frontKnee, frontAnkle, front, back := landmark.LeftKnee, landmark.LeftAnkle, left, right
	if right < left {
		frontKnee, frontAnkle, front, back = landmark.RightKnee, landmark.RightAnkle, right, left
	}

	var issues []string
	if math.Abs(j[frontKnee].X-j[frontAnkle].X) > d.p.KneeOverToe {
		issues = append(issues, "Keep your front knee behind your toes")
	}
	switch {
	case front > 130:
		issues = append(issues, "Go deeper")
	case front < 60:
		issues = append(issues, "Too low, ease up")
	}
	if back < 130 {
		issues = append(issues, "Straighten your back leg")
	}
	hipX := j.Mid(landmark.LeftHip, landmark.RightHip).X
	if math.Abs(j[landmark.Nose].X-hipX) > d.p.TorsoLean {
		issues = append(issues, "Keep your torso upright")
	}
	if len(issues) == 0 {
		return "Good form!"
	}
	return strings.Join(issues, ". ")
}

// Stats returns the hold statistics for the current set.
func (d *Lunge) Stats() LungeStats {
	return d.stats
}

// Reset implements Detector.
func (d *Lunge) Reset() {
	d.resetBase()
	d.start = time.Time{}
	d.sinceRep = d.p.GapFrames + 1
	d.stats = LungeStats{}
}
