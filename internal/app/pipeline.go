package app

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/session"
)

// runCapture feeds camera frames to s until ctx is cancelled or the camera
// runs dry.
//
// Pipeline:
// 1. Open the camera and pace reads at its frame rate
// 2. Estimate the pose of each frame
// 3. Stamp the landmarks with the capture time and queue them on the session
//
// Estimation errors skip the frame. Frames without a person are still queued
// so the detector can ask the user to reposition.
func (a *App) runCapture(ctx context.Context, s *session.Session) {
	cam := a.cfg.Camera
	if err := cam.Open(); err != nil {
		log.Errorf("Failed to open camera: %v", err)
		return
	}

	fps := cam.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case <-ticker.C:
			mat, err := cam.ReadFrame()
			if errors.Is(err, capture.ErrNoFrames) {
				log.Info("Camera has no more frames")
				return
			}
			if err != nil {
				log.Warnf("Error reading frame: %v", err)
				continue
			}
			at := time.Now()

			frame, err := a.cfg.Estimator.Estimate(mat)
			mat.Close()
			if err != nil {
				log.Warnf("Error estimating pose: %v", err)
				continue
			}
			frame.Timestamp = at
			a.submit(s, frame)
		}
	}
}
