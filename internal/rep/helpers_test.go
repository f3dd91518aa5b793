package rep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// hold repeats f n times.
func hold(f landmark.Frame, n int) []landmark.Frame {
	out := make([]landmark.Frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

func concat(parts ...[]landmark.Frame) []landmark.Frame {
	var out []landmark.Frame
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func cycles(n int, cycle ...[]landmark.Frame) []landmark.Frame {
	var out []landmark.Frame
	for i := 0; i < n; i++ {
		out = append(out, concat(cycle...)...)
	}
	return out
}

// run feeds frames every step starting at start.
func run(d Detector, frames []landmark.Frame, start time.Time, step time.Duration) []Result {
	out := make([]Result, len(frames))
	for i, f := range frames {
		out[i] = d.Process(f, start.Add(time.Duration(i)*step))
	}
	return out
}

func last(results []Result) Result {
	return results[len(results)-1]
}

func detectedCount(results []Result) int {
	n := 0
	for _, r := range results {
		if r.RepDetected {
			n++
		}
	}
	return n
}

func newDetector(t *testing.T, name string) Detector {
	t.Helper()
	cfg, err := exercise.NewRegistry().Get(name)
	require.NoError(t, err)
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

func highKneeCycle(angle float64) []landmark.Frame {
	return concat(
		hold(landmark.Standing(), 3),
		hold(landmark.HighKnee(landmark.Left, angle), 3),
		hold(landmark.Standing(), 3),
		hold(landmark.HighKnee(landmark.Right, angle), 3),
	)
}

func squatCycle(depth float64) []landmark.Frame {
	return concat(hold(landmark.Squat(170), 10), hold(landmark.Squat(depth), 10))
}

func pushUpCycle() []landmark.Frame {
	return concat(hold(landmark.PushUp(170), 3), hold(landmark.PushUp(90), 3))
}

func jump() landmark.Frame {
	return landmark.Shift(landmark.Standing(), 0, -0.1)
}

func burpeeCycle() []landmark.Frame {
	return concat(
		hold(landmark.Standing(), 3),
		hold(landmark.Squat(100), 7),
		hold(landmark.PushUp(170), 6),
		hold(landmark.PushUp(90), 4),
		hold(landmark.Squat(100), 6),
		hold(jump(), 6),
		hold(landmark.Standing(), 11),
	)
}

func jumpSquatCycle() []landmark.Frame {
	return []landmark.Frame{
		landmark.Standing(),
		landmark.Squat(150),
		landmark.Squat(90),
		landmark.Squat(140),
		jump(),
		landmark.Standing(),
		landmark.Standing(),
	}
}
