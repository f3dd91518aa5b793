package rep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
)

func newPlank(t *testing.T) *Plank {
	t.Helper()
	cfg, err := exercise.NewRegistry().Get("plank")
	require.NoError(t, err)
	return NewPlank(cfg)
}

func TestPlank_OnsetDebounce(t *testing.T) {
	d := newPlank(t)
	results := run(d, hold(landmark.Plank(), 10), t0, 100*time.Millisecond)

	for i, r := range results[:9] {
		assert.False(t, r.Holding, "frame %d", i)
		assert.Zero(t, r.Hold)
		assert.Equal(t, exercise.PhaseIdle, r.Phase)
	}
	assert.True(t, results[9].Holding)
	assert.Equal(t, exercise.PhaseHolding, results[9].Phase)
	assert.Equal(t, 1, d.Holds())
}

func TestPlank_BadFrameRestartsOnset(t *testing.T) {
	d := newPlank(t)
	frames := concat(hold(landmark.Plank(), 9), hold(landmark.SaggingPlank(), 1), hold(landmark.Plank(), 9))
	results := run(d, frames, t0, 100*time.Millisecond)
	assert.False(t, last(results).Holding)
}

func TestPlank_TerminationDebounce(t *testing.T) {
	d := newPlank(t)
	step := 100 * time.Millisecond
	good := hold(landmark.Plank(), 20)
	results := run(d, good, t0, step)
	require.True(t, last(results).Holding)

	start := t0.Add(time.Duration(len(good)) * step)
	bad := run(d, hold(landmark.SaggingPlank(), 15), start, step)
	for i, r := range bad[:14] {
		assert.True(t, r.Holding, "bad frame %d", i)
		assert.Equal(t, "Lift your hips, don't let them sag", r.Feedback)
	}
	assert.False(t, bad[14].Holding)

	// Timer ran from the 10th good frame to the 15th bad frame.
	want := start.Add(14 * step).Sub(t0.Add(9 * step))
	assert.Equal(t, want, bad[14].Hold)
}

func TestPlank_AccumulatesAcrossHolds(t *testing.T) {
	d := newPlank(t)
	step := time.Second
	frames := concat(
		hold(landmark.Plank(), 15),
		hold(landmark.SaggingPlank(), 15),
		hold(landmark.Plank(), 15),
	)
	results := run(d, frames, t0, step)

	// First hold: frames 9..29 (20s). Second hold starts at frame 39.
	assert.Equal(t, 20*time.Second+5*time.Second, last(results).Hold)
	assert.Equal(t, 2, d.Holds())
	assert.Contains(t, last(results).Feedback, "00:25")

	d.Reset()
	assert.Zero(t, d.Hold(t0))
	assert.Zero(t, d.Holds())
}

func TestPlank_LostPersonStopsTimer(t *testing.T) {
	d := newPlank(t)
	step := 100 * time.Millisecond
	run(d, hold(landmark.Plank(), 12), t0, step)

	results := run(d, hold(landmark.Frame{}, 15), t0.Add(12*step), step)
	assert.True(t, results[13].Holding)
	assert.True(t, results[13].Reposition)
	assert.False(t, last(results).Holding)
}

func TestPlank_Checks(t *testing.T) {
	kneesDown := landmark.Plank()
	kneesDown.Points[landmark.LeftKnee].Y = 0.72
	kneesDown.Points[landmark.RightKnee].Y = 0.72

	highPlank := landmark.Plank()
	highPlank.Points[landmark.LeftWrist].Y = 0.7
	highPlank.Points[landmark.RightWrist].Y = 0.7

	piked := landmark.Plank()
	piked.Points[landmark.LeftHip].Y = 0.5
	piked.Points[landmark.RightHip].Y = 0.5

	tests := []struct {
		name     string
		frame    landmark.Frame
		feedback string
	}{
		{"standing", landmark.Standing(), "Get down into a plank position"},
		{"high plank", highPlank, "Get down on your forearms"},
		{"knees down", kneesDown, "Lift your knees off the ground"},
		{"sagging", landmark.SaggingPlank(), "Lift your hips, don't let them sag"},
		{"piked", piked, "Lower your hips"},
		{"good", landmark.Plank(), "Hold steady... 1/10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPlank(t).Process(tt.frame, t0)
			assert.Equal(t, tt.feedback, r.Feedback)
		})
	}
}

func TestFormatHold(t *testing.T) {
	assert.Equal(t, "00:00", FormatHold(0))
	assert.Equal(t, "00:09", FormatHold(9900*time.Millisecond))
	assert.Equal(t, "01:15", FormatHold(75*time.Second))
	assert.Equal(t, "12:00", FormatHold(12*time.Minute))
}
