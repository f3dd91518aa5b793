package rep

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

type leg struct {
	side             landmark.Side
	hip, knee, ankle landmark.Joint
	phase            exercise.Phase
}

// KneeLift counts high-knee lifts with one sub-machine per leg.
// A leg goes up when the knee rises past the height line with the knee angle
// above the up threshold, and counts a rep when it comes back down.
type KneeLift struct {
	base
	p        exercise.KneeLiftParams
	up, down float64
	legs     [2]leg
	cal      *Calibrator
}

// NewKneeLift returns a knee-lift detector. cfg.KneeLift must be set.
func NewKneeLift(cfg exercise.Config) *KneeLift {
	p := *cfg.KneeLift
	d := &KneeLift{
		base: newBase(cfg, exercise.PhaseDown, legJoints),
		p:    p,
		up:   p.UpAngle,
		down: p.DownAngle,
		legs: [2]leg{
			{side: landmark.Left, hip: landmark.LeftHip, knee: landmark.LeftKnee, ankle: landmark.LeftAnkle},
			{side: landmark.Right, hip: landmark.RightHip, knee: landmark.RightKnee, ankle: landmark.RightAnkle},
		},
		cal: NewCalibrator(p.CalibrationSamples, p.CalibrationOffset, p.MinAngle, p.MaxAngle),
	}
	d.Reset()
	return d
}

// Process implements Detector.
func (d *KneeLift) Process(f landmark.Frame, now time.Time) Result {
	j, r, ok := d.joints(f)
	if !ok {
		return r
	}

	var (
		counted  bool
		feedback string
	)
	for i := range d.legs {
		l := &d.legs[i]
		angle := j.Angle(l.hip, l.knee, l.ankle)
		raised := j[l.hip].Y-j[l.knee].Y > d.p.HeightThreshold

		switch l.phase {
		case exercise.PhaseDown:
			if raised && angle > d.up-d.p.Tolerance {
				l.phase = exercise.PhaseUp
				feedback = fmt.Sprintf("%s knee up - good height!", sideName(l.side))
				if up, down, ok := d.cal.Add(l.side, angle); ok {
					log.Debugf("knee-lift calibrated: up %.1f -> %.1f, down %.1f -> %.1f", d.up, up, d.down, down)
					d.up, d.down = up, down
				}
			}
		case exercise.PhaseUp:
			if !raised && angle >= d.down {
				l.phase = exercise.PhaseDown
				// One rep per frame even if both legs land together.
				if !counted && d.cooledDown(now) {
					d.countRep(now)
					counted = true
				}
			}
		}
	}

	d.phase = exercise.PhaseDown
	for _, l := range d.legs {
		if l.phase == exercise.PhaseUp {
			d.phase = exercise.PhaseUp
		}
	}

	switch {
	case counted:
		feedback = fmt.Sprintf("High-knee rep %d!", d.reps)
	case feedback != "":
	case d.phase == exercise.PhaseDown:
		feedback = "Lift your knees higher!"
	default:
		feedback = "Keep going!"
	}

	r = d.result(feedback)
	r.RepDetected = counted
	return r
}

// Reset implements Detector. Calibrated thresholds survive a reset.
func (d *KneeLift) Reset() {
	d.resetBase()
	for i := range d.legs {
		d.legs[i].phase = exercise.PhaseDown
	}
}

// Thresholds returns the current up and down knee angles.
func (d *KneeLift) Thresholds() (up, down float64) {
	return d.up, d.down
}

// Calibrated reports whether the thresholds have been adapted to the user.
func (d *KneeLift) Calibrated() bool {
	return d.cal.Done()
}

func sideName(s landmark.Side) string {
	if s == landmark.Left {
		return "Left"
	}
	return "Right"
}
