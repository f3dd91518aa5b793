package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCamera_Limit(t *testing.T) {
	cam := NewMockCamera(2)

	_, err := cam.ReadFrame()
	assert.ErrorIs(t, err, ErrCameraNotOpen)

	require.NoError(t, cam.Open())
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		require.NoError(t, err, "read %d", i)
		assert.False(t, f.Empty())
		f.Close()
	}

	_, err = cam.ReadFrame()
	assert.ErrorIs(t, err, ErrNoFrames)
	assert.Equal(t, 2, cam.Reads())
}

func TestMockCamera_Unlimited(t *testing.T) {
	cam := NewMockCamera(0)
	require.NoError(t, cam.Open())
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		require.NoError(t, err, "read %d", i)
		f.Close()
	}
	assert.Equal(t, 5, cam.Reads())
}
