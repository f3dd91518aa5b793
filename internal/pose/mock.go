package pose

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/landmark"
)

// MockEstimator is a test implementation of the Estimator interface.
// It replays queued frames, then keeps returning the last one.
type MockEstimator struct {
	mu     sync.Mutex
	frames []landmark.Frame
	last   landmark.Frame
	err    error
	calls  int
	closed bool
}

// NewMockEstimator creates a new MockEstimator instance.
func NewMockEstimator(frames ...landmark.Frame) *MockEstimator {
	return &MockEstimator{frames: frames}
}

// Push queues frames to be returned by Estimate.
func (m *MockEstimator) Push(frames ...landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frames...)
}

// SetError sets the error that will be returned by Estimate.
func (m *MockEstimator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Estimate returns the next queued frame or the configured error.
func (m *MockEstimator) Estimate(frame *gocv.Mat) (landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return landmark.Frame{}, m.err
	}
	if len(m.frames) > 0 {
		m.last = m.frames[0]
		m.frames = m.frames[1:]
	}
	return m.last, nil
}

// Calls returns how many times Estimate was called.
func (m *MockEstimator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockEstimator) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the estimator closed.
func (m *MockEstimator) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
