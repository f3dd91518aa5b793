package rep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

func TestKneeLift_CountsEveryLift(t *testing.T) {
	for _, n := range []int{1, 3, 6} {
		d := newDetector(t, "high knees")
		frames := concat(cycles(n, highKneeCycle(95)), hold(landmark.Standing(), 1))
		results := run(d, frames, t0, 100*time.Millisecond)

		assert.Equal(t, 2*n, last(results).Reps, "cycles=%d", n)
		assert.Equal(t, 2*n, detectedCount(results), "cycles=%d", n)
	}
}

func TestKneeLift_Cooldown(t *testing.T) {
	d := newDetector(t, "high knees")
	frames := concat(cycles(4, highKneeCycle(95)), hold(landmark.Standing(), 1))

	// Lifts land every 300ms, inside the 500ms cooldown, so every other one counts.
	results := run(d, frames, t0, 50*time.Millisecond)
	assert.Equal(t, 4, last(results).Reps)
}

func TestKneeLift_OneRepPerFrame(t *testing.T) {
	both := landmark.HighKnee(landmark.Left, 95)
	right := landmark.HighKnee(landmark.Right, 95)
	both.Points[landmark.RightKnee] = right.Points[landmark.RightKnee]
	both.Points[landmark.RightAnkle] = right.Points[landmark.RightAnkle]

	d := newDetector(t, "high knees")
	results := run(d, []landmark.Frame{landmark.Standing(), both, landmark.Standing()}, t0, time.Second)

	assert.Equal(t, exercise.PhaseUp, results[1].Phase)
	assert.Equal(t, 1, last(results).Reps)
	assert.True(t, last(results).RepDetected)
}

func TestKneeLift_NoRepWithoutLift(t *testing.T) {
	d := newDetector(t, "high knees")
	// Knee bent but not raised to the height line.
	results := run(d, hold(landmark.Squat(150), 10), t0, 100*time.Millisecond)

	assert.Equal(t, 0, last(results).Reps)
	assert.Equal(t, "Lift your knees higher!", last(results).Feedback)
}

func TestKneeLift_Calibration(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		up, down float64
	}{
		{"recenters around average", 130, 110, 150},
		{"clamps up threshold", 95, 90, 115},
		{"clamps down threshold", 160, 140, 170},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := exercise.New("high knees", exercise.KneeLift)
			d := NewKneeLift(cfg)
			now := t0
			feed := func(frames []landmark.Frame) {
				for _, f := range frames {
					d.Process(f, now)
					now = now.Add(100 * time.Millisecond)
				}
			}

			feed(cycles(4, highKneeCycle(tt.angle)))
			feed(concat(hold(landmark.Standing(), 3), hold(landmark.HighKnee(landmark.Left, tt.angle), 3)))

			// Nine samples: still on the defaults.
			assert.False(t, d.Calibrated())
			up, down := d.Thresholds()
			assert.Equal(t, 100.0, up)
			assert.Equal(t, 110.0, down)

			feed(concat(hold(landmark.Standing(), 3), hold(landmark.HighKnee(landmark.Right, tt.angle), 3)))

			assert.True(t, d.Calibrated())
			up, down = d.Thresholds()
			assert.InDelta(t, tt.up, up, 1e-6)
			assert.InDelta(t, tt.down, down, 1e-6)

			feed(cycles(3, highKneeCycle(145)))
			up2, down2 := d.Thresholds()
			assert.Equal(t, up, up2, "thresholds must not drift after calibration")
			assert.Equal(t, down, down2)
		})
	}
}

func TestKneeLift_ResetKeepsCalibration(t *testing.T) {
	d := NewKneeLift(exercise.New("high knees", exercise.KneeLift))
	run(d, concat(cycles(5, highKneeCycle(130)), hold(landmark.Standing(), 1)), t0, 100*time.Millisecond)
	assert.True(t, d.Calibrated())

	d.Reset()
	up, down := d.Thresholds()
	assert.InDelta(t, 110, up, 1e-6)
	assert.InDelta(t, 150, down, 1e-6)
	assert.Equal(t, 0, d.Process(landmark.Standing(), t0).Reps)
}
