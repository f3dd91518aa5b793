package rep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

func TestJumpSquat_CountsEveryCycle(t *testing.T) {
	for _, n := range []int{1, 4} {
		d := newDetector(t, "jump squats")
		results := run(d, cycles(n, jumpSquatCycle()), t0, 100*time.Millisecond)
		assert.Equal(t, n, last(results).Reps, "cycles=%d", n)
		assert.Equal(t, exercise.PhaseStanding, last(results).Phase)
	}
}

func TestJumpSquat_CountsOnTakeoff(t *testing.T) {
	d := newDetector(t, "jump squats")
	results := run(d, jumpSquatCycle(), t0, 100*time.Millisecond)

	phases := make([]exercise.Phase, len(results))
	for i, r := range results {
		phases[i] = r.Phase
	}
	assert.Equal(t, []exercise.Phase{
		exercise.PhaseStanding,
		exercise.PhaseDescending,
		exercise.PhaseSquatting,
		exercise.PhaseJumping,
		exercise.PhaseJumping,
		exercise.PhaseLanding,
		exercise.PhaseStanding,
	}, phases)
	assert.True(t, results[3].RepDetected)
	assert.Equal(t, 1, detectedCount(results))
}

func TestJumpSquat_OutOfOrderIsNoise(t *testing.T) {
	d := newDetector(t, "jump squats")
	frames := []landmark.Frame{
		landmark.Standing(),
		jump(),
		landmark.Standing(),
		landmark.Squat(150),
		landmark.Standing(),
	}
	results := run(d, frames, t0, 100*time.Millisecond)
	assert.Equal(t, 0, last(results).Reps)
	assert.Equal(t, exercise.PhaseStanding, last(results).Phase)
}

func TestJumpSquat_Cooldown(t *testing.T) {
	d := newDetector(t, "jump squats")
	results := run(d, cycles(2, jumpSquatCycle()), t0, 50*time.Millisecond)
	assert.Equal(t, 1, last(results).Reps)
}

func TestJumpSquat_SlowStandLeavesSquat(t *testing.T) {
	frames := []landmark.Frame{
		landmark.Standing(),
		landmark.Squat(150),
		landmark.Squat(90),
	}
	for a := 95.0; a <= 180; a += 5 {
		frames = append(frames, landmark.Squat(a))
	}
	d := newDetector(t, "jump squats")
	results := run(d, frames, t0, 100*time.Millisecond)

	assert.Equal(t, exercise.PhaseStanding, last(results).Phase)
	assert.Equal(t, 0, detectedCount(results))
	assert.Equal(t, 0, last(results).Reps)
}
