package landmark

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-6

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Point
		want    float64
	}{
		{"right angle", Point{X: 0, Y: 1}, Point{}, Point{X: 1, Y: 0}, 90},
		{"straight line", Point{X: -1, Y: 0}, Point{}, Point{X: 1, Y: 0}, 180},
		{"folded", Point{X: 1, Y: 0}, Point{}, Point{X: 2, Y: 0}, 0},
		{"forty five", Point{X: 1, Y: 1}, Point{}, Point{X: 1, Y: 0}, 45},
		{"ignores depth", Point{X: 0, Y: 1, Z: 5}, Point{}, Point{X: 1, Y: 0, Z: -3}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Angle(tt.a, tt.b, tt.c), epsilon)
		})
	}
}

func TestAngle_Symmetric(t *testing.T) {
	pts := []Point{
		{X: 0.1, Y: 0.2}, {X: 0.4, Y: 0.9}, {X: 0.33, Y: 0.5},
		{X: 0.7, Y: 0.1}, {X: 0.9, Y: 0.95}, {X: 0.5, Y: 0.5},
	}
	for i := range pts {
		for j := range pts {
			for k := range pts {
				a, b, c := pts[i], pts[j], pts[k]
				first := Angle(a, b, c)
				assert.InDelta(t, first, Angle(c, b, a), epsilon)
				assert.Equal(t, first, Angle(a, b, c), "angle must be deterministic")
			}
		}
	}
}

func TestAngle_Degenerate(t *testing.T) {
	p := Point{X: 0.5, Y: 0.5}

	t.Run("coincident vertex and endpoint", func(t *testing.T) {
		got := Angle(p, p, Point{X: 1, Y: 1})
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, DegenerateAngle, got)
	})

	t.Run("all points coincident", func(t *testing.T) {
		got := Angle(p, p, p)
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, DegenerateAngle, got)
	})

	t.Run("near collinear drift stays in range", func(t *testing.T) {
		got := Angle(Point{X: 0, Y: 0}, Point{X: 1e-3, Y: 1e-3}, Point{X: 2e-3, Y: 2e-3 + 1e-15})
		assert.False(t, math.IsNaN(got))
		assert.InDelta(t, 180, got, 1e-3)
	})
}

func TestExtract(t *testing.T) {
	required := []Joint{LeftHip, LeftKnee, LeftAnkle}

	t.Run("returns requested joints", func(t *testing.T) {
		f := Standing()
		j, err := Extract(f, nil, required)
		require.NoError(t, err)
		assert.Len(t, j, 3)
		assert.Equal(t, f.Points[LeftKnee], j[LeftKnee])
	})

	t.Run("empty frame means nobody in view", func(t *testing.T) {
		_, err := Extract(Frame{}, nil, required)
		assert.ErrorIs(t, err, ErrNoPerson)
	})

	t.Run("low confidence joint", func(t *testing.T) {
		f := WithConfidence(Standing(), LeftKnee, 0.3)
		_, err := Extract(f, nil, required)
		assert.ErrorIs(t, err, ErrLowConfidence)
		assert.Contains(t, err.Error(), "left_knee")
	})

	t.Run("confidence at threshold is accepted", func(t *testing.T) {
		f := WithConfidence(Standing(), LeftKnee, MinConfidence)
		_, err := Extract(f, nil, required)
		assert.NoError(t, err)
	})

	t.Run("short frame", func(t *testing.T) {
		f := Frame{Points: make([]Point, 5)}
		_, err := Extract(f, nil, required)
		assert.True(t, errors.Is(err, ErrMissingLandmark))
	})

	t.Run("custom joint map", func(t *testing.T) {
		f := Frame{Points: []Point{
			{X: 0, Y: 0, Confidence: 1},
			{X: 0, Y: 1, Confidence: 1},
			{X: 1, Y: 1, Confidence: 1},
		}}
		m := JointMap{LeftHip: 0, LeftKnee: 1, LeftAnkle: 2}
		j, err := Extract(f, m, required)
		require.NoError(t, err)
		assert.InDelta(t, 90, j.Angle(LeftHip, LeftKnee, LeftAnkle), epsilon)
	})

	t.Run("does not mutate the frame", func(t *testing.T) {
		f := Standing()
		before := append([]Point(nil), f.Points...)
		_, _ = Extract(f, nil, required)
		assert.Equal(t, before, f.Points)
	})
}

func TestParseJoint(t *testing.T) {
	j, err := ParseJoint("right_elbow")
	require.NoError(t, err)
	assert.Equal(t, RightElbow, j)
	assert.Equal(t, "right_elbow", j.String())

	_, err = ParseJoint("tail")
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	all := []Joint{LeftHip, RightHip, LeftKnee, RightKnee, LeftAnkle, RightAnkle,
		LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist, Nose}

	t.Run("squat knee angle", func(t *testing.T) {
		for _, want := range []float64{180, 160, 120, 90, 85} {
			j, err := Extract(Squat(want), nil, all)
			require.NoError(t, err)
			assert.InDelta(t, want, j.Angle(LeftHip, LeftKnee, LeftAnkle), 1e-3)
			assert.InDelta(t, want, j.Angle(RightHip, RightKnee, RightAnkle), 1e-3)
		}
	})

	t.Run("high knee", func(t *testing.T) {
		j, err := Extract(HighKnee(Right, 95), nil, all)
		require.NoError(t, err)
		assert.InDelta(t, 95, j.Angle(RightHip, RightKnee, RightAnkle), 1e-3)
		assert.InDelta(t, 180, j.Angle(LeftHip, LeftKnee, LeftAnkle), 1e-3)
		assert.InDelta(t, j[RightHip].Y, j[RightKnee].Y, 1e-9)
	})

	t.Run("push-up elbow angle", func(t *testing.T) {
		for _, want := range []float64{170, 130, 90} {
			j, err := Extract(PushUp(want), nil, all)
			require.NoError(t, err)
			assert.InDelta(t, want, j.Angle(LeftShoulder, LeftElbow, LeftWrist), 1e-3)
			assert.InDelta(t, 180, j.Angle(LeftShoulder, LeftHip, LeftKnee), 1e-3)
		}
	})

	t.Run("lunge knee angles", func(t *testing.T) {
		j, err := Extract(Lunge(Left, 90, 150), nil, all)
		require.NoError(t, err)
		assert.InDelta(t, 90, j.Angle(LeftHip, LeftKnee, LeftAnkle), 1e-3)
		assert.InDelta(t, 150, j.Angle(RightHip, RightKnee, RightAnkle), 1e-3)
	})

	t.Run("lunge knee angles right front", func(t *testing.T) {
		j, err := Extract(Lunge(Right, 100, 120), nil, all)
		require.NoError(t, err)
		assert.InDelta(t, 100, j.Angle(RightHip, RightKnee, RightAnkle), 1e-3)
		assert.InDelta(t, 120, j.Angle(LeftHip, LeftKnee, LeftAnkle), 1e-3)
	})

	t.Run("shift keeps angles", func(t *testing.T) {
		j, err := Extract(Shift(Squat(120), 0.1, -0.1), nil, all)
		require.NoError(t, err)
		assert.InDelta(t, 120, j.Angle(LeftHip, LeftKnee, LeftAnkle), 1e-3)
	})
}
