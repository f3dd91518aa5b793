package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/session"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		st   *app.Status
		want string
	}{
		{"idle", nil, "Idle"},
		{
			"counting",
			&app.Status{Exercise: "squats", Archetype: "squat", Progress: session.Event{SetIndex: 2, TotalSets: 3, RepCount: 4, TargetReps: 10}},
			"squats set 2/3: 4/10",
		},
		{
			"resting",
			&app.Status{Exercise: "squats", Archetype: "squat", Progress: session.Event{SetIndex: 1, TotalSets: 3, RepCount: 10, TargetReps: 10, Resting: true, RestSeconds: 7}},
			"squats set 1/3: 10/10 (rest 7s)",
		},
		{
			"hold",
			&app.Status{Exercise: "plank", Archetype: "plank", Progress: session.Event{SetIndex: 1, TotalSets: 1, RepCount: 12, TargetReps: 30, HoldSeconds: 12.4}},
			"plank set 1/1: 12/30s",
		},
		{
			"done",
			&app.Status{Exercise: "lunges", Archetype: "lunge", Progress: session.Event{SetIndex: 2, TotalSets: 2, RepCount: 8, TargetReps: 8, WorkoutComplete: true}},
			"lunges set 2/2: 8/8 (done)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.st))
		})
	}
}

func TestTray_UpdateBeforeReady(t *testing.T) {
	tr := New()
	assert.Equal(t, "Idle", tr.Status())

	tr.Update(&app.Status{Exercise: "squats", Progress: session.Event{SetIndex: 1, TotalSets: 1, TargetReps: 5}})
	assert.Equal(t, "squats set 1/1: 0/5", tr.Status())

	tr.Update(nil)
	assert.Equal(t, "Idle", tr.Status())
}
