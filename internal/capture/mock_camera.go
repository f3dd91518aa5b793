package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera produces blank frames for tests that pair it with a mock pose
// estimator. A limit of zero produces frames forever.
type MockCamera struct {
	mu    sync.Mutex
	open  bool
	limit int
	reads int
	fps   int
}

// NewMockCamera returns a mock that yields limit frames.
func NewMockCamera(limit int) *MockCamera {
	return &MockCamera{limit: limit, fps: 100}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.limit > 0 && c.reads >= c.limit {
		return nil, ErrNoFrames
	}
	c.reads++
	mat := gocv.NewMatWithSize(DefaultHeight/4, DefaultWidth/4, gocv.MatTypeCV8UC3)
	return &mat, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Reads returns how many frames were handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
