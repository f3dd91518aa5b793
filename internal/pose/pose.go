// Package pose turns camera images into body landmark frames.
package pose

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/landmark"
)

// Estimator produces one landmark frame per image.
type Estimator interface {
	// Estimate returns the pose found in frame. A frame with no person has no points.
	Estimate(frame *gocv.Mat) (landmark.Frame, error)

	// Close releases any resources held by the estimator.
	Close() error
}

// Config holds pose estimation options.
type Config struct {
	// Script is the pose service script. Empty means search the usual locations.
	Script string

	// Python is the interpreter. Empty means a project venv or python3.
	Python string

	// MinConfidence is passed to the pose model as its detection threshold.
	MinConfidence float64

	// IdleTimeout stops the subprocess after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: landmark.MinConfidence,
		IdleTimeout:   30 * time.Second,
	}
}
