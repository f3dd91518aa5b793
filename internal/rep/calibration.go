package rep

import (
	"math"

	"github.com/ayusman/repcount/internal/landmark"
)

// Calibrator collects knee angles from a user's first lifts and derives
// up/down thresholds from them once. After that it ignores further samples.
type Calibrator struct {
	perSide  int
	offset   float64
	min, max float64

	samples map[landmark.Side][]float64
	done    bool
}

// NewCalibrator returns a calibrator that waits for perSide samples from each leg.
func NewCalibrator(perSide int, offset, min, max float64) *Calibrator {
	return &Calibrator{
		perSide: perSide,
		offset:  offset,
		min:     min,
		max:     max,
		samples: make(map[landmark.Side][]float64),
	}
}

// Add records an angle for side. When the last required sample arrives it
// returns the new thresholds and true; every other call returns false.
func (c *Calibrator) Add(side landmark.Side, angle float64) (up, down float64, ok bool) {
	if c.done || c.perSide == 0 || len(c.samples[side]) >= c.perSide {
		return 0, 0, false
	}
	c.samples[side] = append(c.samples[side], angle)
	if len(c.samples[landmark.Left]) < c.perSide || len(c.samples[landmark.Right]) < c.perSide {
		return 0, 0, false
	}

	var sum float64
	for _, s := range c.samples {
		for _, a := range s {
			sum += a
		}
	}
	avg := sum / float64(2*c.perSide)
	c.done = true
	return math.Max(c.min, avg-c.offset), math.Min(c.max, avg+c.offset), true
}

// Done reports whether thresholds have been derived.
func (c *Calibrator) Done() bool {
	return c.done
}

// Samples returns how many angles have been collected.
func (c *Calibrator) Samples() int {
	return len(c.samples[landmark.Left]) + len(c.samples[landmark.Right])
}
