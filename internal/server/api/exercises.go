package api

import (
	"net/http"

	"github.com/ayusman/repcount/internal/exercise"
)

// ExerciseHandler serves the exercise registry.
type ExerciseHandler struct {
	registry *exercise.Registry
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(r *exercise.Registry) *ExerciseHandler {
	return &ExerciseHandler{registry: r}
}

type exerciseResponse struct {
	Name       string   `json:"name"`
	Archetype  string   `json:"archetype"`
	CooldownMs int64    `json:"cooldown_ms"`
	Phases     []string `json:"phases"`
	Timed      bool     `json:"timed"`
}

type listExercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
	Fallback  string             `json:"fallback"`
}

// List handles GET /api/exercises.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	configs := h.registry.List()
	resp := listExercisesResponse{
		Exercises: make([]exerciseResponse, 0, len(configs)),
		Fallback:  exercise.FallbackName,
	}
	for _, c := range configs {
		phases := make([]string, 0, len(c.Phases))
		for _, p := range c.Phases {
			phases = append(phases, string(p))
		}
		resp.Exercises = append(resp.Exercises, exerciseResponse{
			Name:       c.Name,
			Archetype:  string(c.Archetype),
			CooldownMs: c.Cooldown.Milliseconds(),
			Phases:     phases,
			Timed:      c.Hold(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
