package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/landmark"
	"github.com/ayusman/repcount/internal/metrics"
	"github.com/ayusman/repcount/internal/progress"
	"github.com/ayusman/repcount/internal/rep"
	"github.com/ayusman/repcount/internal/server"
	"github.com/ayusman/repcount/internal/session"
	"github.com/ayusman/repcount/internal/store"
)

const definitions = `
exercises:
  - name: Wall Squats 🧱
    archetype: squat
    cooldown: 300ms
`

// progressEndpoint records what the progress service was sent.
type progressEndpoint struct {
	mu      sync.Mutex
	records []progress.Record
}

func (p *progressEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/track-exercise" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var rec progress.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.mu.Lock()
	p.records = append(p.records, rec)
	p.mu.Unlock()
	json.NewEncoder(w).Encode(progress.Response{
		Completed:  rec.CurrentReps >= rec.TargetReps,
		Reps:       rec.CurrentReps,
		CurrentSet: rec.CurrentSet,
		TotalSets:  rec.TotalSets,
	})
}

func (p *progressEndpoint) received() []progress.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]progress.Record(nil), p.records...)
}

type stack struct {
	url      string
	client   *http.Client
	endpoint *progressEndpoint
	app      *app.App
}

func newStack(t *testing.T) *stack {
	t.Helper()
	tmpDir := t.TempDir()

	st, err := store.New(filepath.Join(tmpDir, "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	defsPath := filepath.Join(tmpDir, "exercises.yaml")
	require.NoError(t, os.WriteFile(defsPath, []byte(definitions), 0644))
	registry := exercise.NewRegistry()
	_, err = registry.LoadFile(defsPath)
	require.NoError(t, err)

	endpoint := &progressEndpoint{}
	progressSrv := httptest.NewServer(endpoint)
	t.Cleanup(progressSrv.Close)

	outbox := progress.NewOutbox(st.Outbox(), progress.NewClient(progressSrv.URL, time.Second))
	var application *app.App
	sched, err := progress.NewScheduler("@every 1h", outbox, 5*time.Second, func(res progress.FlushResult, err error) {
		application.ObserveFlush(res, err)
	})
	require.NoError(t, err)

	m, reg := metrics.NewTestManagerAndRegistry()
	hub := server.NewHub()
	application = app.New(app.Config{
		Registry:       registry,
		Store:          st,
		Outbox:         outbox,
		Flusher:        sched,
		Metrics:        m,
		Hub:            hub,
		Rest:           time.Second,
		QueueSize:      1024,
		User:           "athlete@example.com",
		SessionOptions: []session.Option{session.WithTick(time.Millisecond)},
	})
	sched.Start()

	ts := httptest.NewServer(server.New(server.Config{
		Registry: registry,
		App:      application,
		Hub:      hub,
		Metrics:  m,
		Gatherer: reg,
	}))
	t.Cleanup(func() {
		ts.Close()
		hub.Close()
		assert.NoError(t, application.Close())
		sched.Stop()
	})

	return &stack{url: ts.URL, client: ts.Client(), endpoint: endpoint, app: application}
}

func (s *stack) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := s.client.Post(s.url+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func (s *stack) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := s.client.Get(s.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type framePoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

type frameBody struct {
	Landmarks []framePoint `json:"landmarks"`
	Timestamp int64        `json:"timestamp"`
}

// stream posts frames 100ms apart until they run out or the workout ends.
func (s *stack) stream(t *testing.T, frames []landmark.Frame, start time.Time) {
	t.Helper()
	for i, f := range frames {
		body := frameBody{Timestamp: start.Add(time.Duration(i) * 100 * time.Millisecond).UnixMilli()}
		for _, p := range f.Points {
			body.Landmarks = append(body.Landmarks, framePoint{X: p.X, Y: p.Y, Visibility: p.Confidence})
		}
		resp := s.post(t, "/api/sessions/current/frames", body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return
		}
		require.Equal(t, http.StatusAccepted, resp.StatusCode, "frame %d", i)
	}
}

func (s *stack) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.get(t, "/api/sessions/current", nil) == http.StatusNotFound
	}, 5*time.Second, 10*time.Millisecond, "workout did not finish")
}

func repeat(f landmark.Frame, n int) []landmark.Frame {
	out := make([]landmark.Frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

func TestE2E_SquatWorkout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	s := newStack(t)

	var listed struct {
		Exercises []struct {
			Name       string `json:"name"`
			CooldownMs int64  `json:"cooldown_ms"`
		} `json:"exercises"`
	}
	require.Equal(t, http.StatusOK, s.get(t, "/api/exercises", &listed))
	found := false
	for _, e := range listed.Exercises {
		if e.Name == "wall squats" {
			found = true
			assert.Equal(t, int64(300), e.CooldownMs)
		}
	}
	assert.True(t, found, "custom exercise is listed")

	resp := s.post(t, "/api/sessions", app.Request{Exercise: "Wall Squats", Sets: 2, Reps: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started app.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	resp.Body.Close()

	var set []landmark.Frame
	for _, angle := range []float64{170, 85, 170, 85, 170} {
		set = append(set, repeat(landmark.Squat(angle), 10)...)
	}

	t0 := time.Now()
	s.stream(t, set, t0)
	require.Eventually(t, func() bool {
		var st app.Status
		return s.get(t, "/api/sessions/current", &st) == http.StatusOK && st.Progress.SetIndex == 2 && !st.Progress.Resting
	}, 5*time.Second, 10*time.Millisecond)

	s.stream(t, set, t0.Add(time.Minute))
	s.waitIdle(t)

	require.Eventually(t, func() bool { return len(s.endpoint.received()) == 2 }, 5*time.Second, 10*time.Millisecond)
	records := s.endpoint.received()
	assert.Equal(t, progress.Record{
		UserEmail:    "athlete@example.com",
		ExerciseName: "wall squats",
		CurrentSet:   1,
		TotalSets:    2,
		TargetReps:   2,
		CurrentReps:  2,
	}, records[0])
	assert.Equal(t, 2, records[1].CurrentSet)

	require.Eventually(t, func() bool {
		var pending struct {
			Pending int `json:"pending"`
		}
		return s.get(t, "/api/progress/pending", &pending) == http.StatusOK && pending.Pending == 0
	}, 5*time.Second, 10*time.Millisecond)

	var history struct {
		Sessions []store.Session `json:"sessions"`
	}
	require.Equal(t, http.StatusOK, s.get(t, "/api/sessions", &history))
	require.Len(t, history.Sessions, 1)
	assert.Equal(t, started.SessionID, history.Sessions[0].ID)
	assert.Equal(t, store.StatusCompleted, history.Sessions[0].Status)
	assert.Equal(t, 4, history.Sessions[0].TotalReps)
	assert.Equal(t, 2, history.Sessions[0].SetsCompleted)
}

func TestE2E_PlankHold(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	s := newStack(t)

	resp := s.post(t, "/api/sessions", app.Request{Exercise: "plank", Sets: 1, TargetSeconds: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Ten frames to settle into the hold, then three seconds of plank.
	s.stream(t, repeat(landmark.Plank(), 40), time.Now())
	s.waitIdle(t)

	require.Eventually(t, func() bool { return len(s.endpoint.received()) == 1 }, 5*time.Second, 10*time.Millisecond)
	rec := s.endpoint.received()[0]
	assert.Equal(t, "plank", rec.ExerciseName)
	assert.Equal(t, 2, rec.TargetReps)
	assert.Equal(t, 2, rec.CurrentReps)
}

func TestE2E_NobodyInView(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	s := newStack(t)

	resp := s.post(t, "/api/sessions", app.Request{Exercise: "push-ups", Sets: 1, Reps: 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.post(t, "/api/sessions/current/frames", frameBody{Landmarks: []framePoint{}})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		var st app.Status
		return s.get(t, "/api/sessions/current", &st) == http.StatusOK && st.Progress.Feedback == rep.FeedbackNoPerson
	}, 5*time.Second, 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodDelete, s.url+"/api/sessions/current", nil)
	require.NoError(t, err)
	resp, err = s.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.endpoint.received())
}
