package session

import (
	"time"

	"github.com/ayusman/repcount/internal/rep"
)

// EventKind says what produced an event.
type EventKind string

const (
	KindFrame EventKind = "frame"
	KindTick  EventKind = "tick"
)

// Event is emitted for every processed frame and every rest tick.
type Event struct {
	Kind            EventKind `json:"kind"`
	SessionID       string    `json:"sessionId"`
	Exercise        string    `json:"exercise"`
	RepCount        int       `json:"repCount"`
	SetIndex        int       `json:"setIndex"`
	TotalSets       int       `json:"totalSets"`
	SetComplete     bool      `json:"setComplete"`
	WorkoutComplete bool      `json:"workoutComplete"`
	TargetReps      int       `json:"targetReps"`
	TotalReps       int       `json:"totalReps"`
	PartialReps     int       `json:"partialReps"`
	RepDetected     bool      `json:"repDetected"`
	PartialRep      bool      `json:"partialRep"`
	Phase           string    `json:"phase,omitempty"`
	Feedback        string    `json:"feedback"`
	Form            string    `json:"form,omitempty"`
	HoldSeconds     float64   `json:"holdSeconds,omitempty"`
	Resting         bool      `json:"resting"`
	RestSeconds     int       `json:"restSeconds,omitempty"`
	Reposition      bool      `json:"reposition,omitempty"`
	At              time.Time `json:"at"`
	// Latency is the detector time spent on the frame.
	Latency time.Duration `json:"-"`
}

func newEvent(kind EventKind, id, exercise string, p Progress, at time.Time) Event {
	return Event{
		Kind:            kind,
		SessionID:       id,
		Exercise:        exercise,
		RepCount:        p.RepsInSet,
		SetIndex:        p.CurrentSet,
		TotalSets:       p.TotalSets,
		SetComplete:     p.SetComplete,
		WorkoutComplete: p.WorkoutComplete,
		TargetReps:      p.TargetReps,
		TotalReps:       p.TotalReps,
		PartialReps:     p.PartialReps,
		HoldSeconds:     p.Hold.Seconds(),
		Resting:         p.Resting,
		RestSeconds:     int(p.RestRemaining / time.Second),
		At:              at,
	}
}

func (e *Event) apply(r rep.Result) {
	e.RepDetected = r.RepDetected
	e.PartialRep = r.PartialRep
	e.Phase = string(r.Phase)
	e.Feedback = r.Feedback
	e.Form = r.Form
	e.Reposition = r.Reposition
}
