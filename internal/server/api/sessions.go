package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/landmark"
	"github.com/ayusman/repcount/internal/session"
	"github.com/ayusman/repcount/internal/store"
)

// maxFrameBody bounds a posted landmark frame.
const maxFrameBody = 64 << 10

// Controller is the workout surface the session endpoints drive.
type Controller interface {
	Start(ctx context.Context, req app.Request) (*app.Status, error)
	Stop() (*app.Status, error)
	Status() (*app.Status, error)
	Submit(f landmark.Frame) error
	History(limit int) ([]*store.Session, error)
	PendingProgress() (int, error)
}

// SessionHandler handles workout session requests.
type SessionHandler struct {
	ctrl Controller
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(c Controller) *SessionHandler {
	return &SessionHandler{ctrl: c}
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type pendingResponse struct {
	Pending int `json:"pending"`
}

// frameRequest is a landmark frame posted by a browser-side pose model.
// Timestamp is milliseconds since the Unix epoch; zero means "now".
type frameRequest struct {
	Landmarks []landmarkRequest `json:"landmarks"`
	Timestamp int64             `json:"timestamp"`
}

// landmarkRequest accepts either a confidence or a MediaPipe visibility.
// A landmark carrying neither is taken as fully visible.
type landmarkRequest struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (f frameRequest) frame() (landmark.Frame, error) {
	if len(f.Landmarks) > landmark.NumLandmarks {
		return landmark.Frame{}, errors.New("too many landmarks")
	}
	out := landmark.Frame{Points: make([]landmark.Point, len(f.Landmarks))}
	for i, l := range f.Landmarks {
		conf := 1.0
		switch {
		case l.Confidence != nil:
			conf = *l.Confidence
		case l.Visibility != nil:
			conf = *l.Visibility
		}
		out.Points[i] = landmark.Point{X: l.X, Y: l.Y, Z: l.Z, Confidence: conf}
	}
	if f.Timestamp > 0 {
		out.Timestamp = time.UnixMilli(f.Timestamp)
	}
	return out, nil
}

// Start handles POST /api/sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req app.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	st, err := h.ctrl.Start(r.Context(), req)
	switch {
	case errors.Is(err, session.ErrSessionActive):
		writeError(w, http.StatusConflict, "A workout is already running")
		return
	case errors.Is(err, app.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Errorf("Failed to start workout: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to start workout")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// Current handles GET /api/sessions/current.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.Status()
	if errors.Is(err, session.ErrNoSession) {
		writeError(w, http.StatusNotFound, "No active workout")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get workout")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Stop handles DELETE /api/sessions/current.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.Stop()
	if errors.Is(err, session.ErrNoSession) {
		writeError(w, http.StatusNotFound, "No active workout")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to stop workout")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Frame handles POST /api/sessions/current/frames.
func (h *SessionHandler) Frame(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	f, err := req.frame()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ctrl.Submit(f); errors.Is(err, session.ErrNoSession) {
		writeError(w, http.StatusNotFound, "No active workout")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to queue frame")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// History handles GET /api/sessions?limit=N.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.ctrl.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// Pending handles GET /api/progress/pending.
func (h *SessionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	n, err := h.ctrl.PendingProgress()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count pending progress")
		return
	}
	writeJSON(w, http.StatusOK, pendingResponse{Pending: n})
}
