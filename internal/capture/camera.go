// Package capture reads video frames from a camera using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings. Pose estimation runs on every frame, so the
// resolution stays modest.
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrames is returned when a finite source has no more frames.
	ErrNoFrames = errors.New("no more frames")
)

// Camera is a source of video frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Device captures from a local camera.
type Device struct {
	id      int
	capture *gocv.VideoCapture
	mu      sync.Mutex
	fps     int
}

// NewCamera returns a closed camera for deviceID. fps <= 0 selects DefaultFPS.
func NewCamera(deviceID, fps int) *Device {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Device{id: deviceID, fps: fps}
}

// Open opens the device at 640x480.
func (c *Device) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.id)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.id, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	return nil
}

// Close releases the device. Closing a closed camera is a no-op.
func (c *Device) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

// ReadFrame implements Camera.
func (c *Device) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("read from camera %d failed", c.id)
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}
	return &mat, nil
}

// SetFPS changes the capture rate. Values <= 0 are ignored.
func (c *Device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the capture rate.
func (c *Device) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is open.
func (c *Device) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
