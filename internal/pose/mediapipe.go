package pose

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/landmark"
)

const scriptName = "pose_service.py"

// ErrScriptNotFound is returned when no pose service script can be located.
var ErrScriptNotFound = errors.New(scriptName + " not found")

// MediaPipe implements Estimator using a Python MediaPipe Pose subprocess.
// Each request is a 4-byte big-endian length followed by a JPEG; each reply
// is one JSON line.
type MediaPipe struct {
	config    Config
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipe creates a pose estimator. The Python process is started
// lazily on the first frame.
func NewMediaPipe(config Config) (*MediaPipe, error) {
	script := config.Script
	if script == "" {
		script = findScript()
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("pose script: %w", err)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	return &MediaPipe{config: config, script: script}, nil
}

// Estimate implements Estimator.
func (m *MediaPipe) Estimate(frame *gocv.Mat) (landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if err := m.ensureStarted(); err != nil {
		return landmark.Frame{}, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return landmark.Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := m.stdin.Write(header); err != nil {
		m.kill()
		return landmark.Frame{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := m.stdin.Write(data); err != nil {
		m.kill()
		return landmark.Frame{}, fmt.Errorf("write data: %w", err)
	}

	line, err := m.stdout.ReadBytes('\n')
	if err != nil {
		m.kill()
		return landmark.Frame{}, fmt.Errorf("read response: %w", err)
	}

	f, err := decodeResponse(line)
	if err != nil {
		return landmark.Frame{}, err
	}
	f.Timestamp = now

	m.resetIdleTimer()
	return f, nil
}

// Close shuts down the Python process.
func (m *MediaPipe) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown()
}

func (m *MediaPipe) ensureStarted() error {
	if m.started {
		return nil
	}

	python := m.config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	m.cmd = exec.Command(python, m.script,
		"--min-confidence", strconv.FormatFloat(m.config.MinConfidence, 'f', 2, 64))

	stdin, err := m.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := m.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	m.cmd.Stderr = os.Stderr

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}
	log.WithField("script", m.script).Info("Pose service started")

	m.stdin = stdin
	m.stdout = bufio.NewReader(stdout)
	m.started = true
	return nil
}

func (m *MediaPipe) shutdown() error {
	if !m.started {
		return nil
	}
	if m.idleTimer != nil {
		m.idleTimer.Stop()
		m.idleTimer = nil
	}
	if m.stdin != nil {
		m.stdin.Close()
	}

	err := m.cmd.Wait()
	m.started = false
	m.cmd = nil
	m.stdin = nil
	m.stdout = nil
	return err
}

// kill drops a subprocess whose pipe broke so the next frame restarts it.
func (m *MediaPipe) kill() {
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
	}
	if err := m.shutdown(); err != nil {
		log.Debugf("Pose service exited: %v", err)
	}
}

func (m *MediaPipe) resetIdleTimer() {
	if m.idleTimer != nil {
		m.idleTimer.Stop()
	}
	m.idleTimer = time.AfterFunc(m.config.IdleTimeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		log.Debug("Pose service idle, stopping")
		m.shutdown()
	})
}

func findScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}
	home, _ := os.UserHomeDir()

	return firstExisting(
		filepath.Join("scripts", scriptName),
		filepath.Join("..", "scripts", scriptName),
		filepath.Join(execDir, "scripts", scriptName),
		filepath.Join(home, ".repcount", "scripts", scriptName),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}
	home, _ := os.UserHomeDir()

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(home, ".repcount/venv/bin/python"),
	)
}

func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonPose is one reply line from the pose service.
type jsonPose struct {
	Landmarks []jsonPoint `json:"landmarks"`
	Error     string      `json:"error,omitempty"`
}

type jsonPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

func decodeResponse(line []byte) (landmark.Frame, error) {
	var resp jsonPose
	if err := json.Unmarshal(line, &resp); err != nil {
		return landmark.Frame{}, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return landmark.Frame{}, fmt.Errorf("pose service: %s", resp.Error)
	}

	f := landmark.Frame{}
	if len(resp.Landmarks) == 0 {
		return f, nil
	}
	f.Points = make([]landmark.Point, len(resp.Landmarks))
	for i, p := range resp.Landmarks {
		f.Points[i] = landmark.Point{X: p.X, Y: p.Y, Z: p.Z, Confidence: p.Visibility}
	}
	return f, nil
}
