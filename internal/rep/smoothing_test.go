package rep

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcount/internal/landmark"
)

func TestSmoother(t *testing.T) {
	s := NewSmoother(0.3)
	assert.Equal(t, 170.0, s.Update(170))
	assert.InDelta(t, 144.5, s.Update(85), 1e-9)
	assert.InDelta(t, 0.7*144.5+0.3*85, s.Update(85), 1e-9)

	s.Reset()
	assert.Equal(t, 90.0, s.Update(90))
	assert.Equal(t, 90.0, s.Value())
}

func TestCalibrator(t *testing.T) {
	t.Run("waits for both sides", func(t *testing.T) {
		c := NewCalibrator(5, 20, 90, 170)
		for i := 0; i < 8; i++ {
			_, _, ok := c.Add(landmark.Left, 120)
			assert.False(t, ok)
		}
		assert.Equal(t, 5, c.Samples(), "extra samples from one side are dropped")

		for i := 0; i < 4; i++ {
			_, _, ok := c.Add(landmark.Right, 140)
			assert.False(t, ok)
		}
		up, down, ok := c.Add(landmark.Right, 140)
		assert.True(t, ok)
		assert.InDelta(t, 110, up, 1e-9)
		assert.InDelta(t, 150, down, 1e-9)
		assert.True(t, c.Done())
	})

	t.Run("fires once", func(t *testing.T) {
		c := NewCalibrator(1, 20, 90, 170)
		c.Add(landmark.Left, 100)
		_, _, ok := c.Add(landmark.Right, 100)
		assert.True(t, ok)
		_, _, ok = c.Add(landmark.Right, 150)
		assert.False(t, ok)
		assert.Equal(t, 2, c.Samples())
	})

	t.Run("disabled", func(t *testing.T) {
		c := NewCalibrator(0, 20, 90, 170)
		_, _, ok := c.Add(landmark.Left, 100)
		assert.False(t, ok)
		assert.False(t, c.Done())
	})
}
