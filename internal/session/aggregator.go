// Package session runs one workout: it feeds frames to the exercise detector
// in arrival order and tracks sets, reps and rest periods.
package session

import (
	"fmt"
	"time"

	"github.com/ayusman/repcount/internal/rep"
)

// DefaultRest is the rest period between sets.
const DefaultRest = 10 * time.Second

// Plan is the shape of a workout. For hold exercises TargetReps is the hold
// target in seconds.
type Plan struct {
	TargetReps int
	TotalSets  int
	Rest       time.Duration
}

// Validate checks the plan is usable.
func (p Plan) Validate() error {
	if p.TargetReps <= 0 {
		return fmt.Errorf("target reps must be positive, got %d", p.TargetReps)
	}
	if p.TotalSets <= 0 {
		return fmt.Errorf("total sets must be positive, got %d", p.TotalSets)
	}
	if p.Rest < 0 {
		return fmt.Errorf("rest must not be negative")
	}
	return nil
}

// Progress is a snapshot of a workout.
type Progress struct {
	TargetReps      int
	TotalSets       int
	CurrentSet      int
	RepsInSet       int
	TotalReps       int
	PartialReps     int
	Hold            time.Duration
	Resting         bool
	RestRemaining   time.Duration
	SetComplete     bool
	WorkoutComplete bool
}

// Aggregator owns the progress of one workout. It is not safe for concurrent use.
type Aggregator struct {
	plan Plan
	hold bool
	p    Progress
}

// NewAggregator returns an aggregator at the start of the first set. hold
// selects timed sets.
func NewAggregator(plan Plan, hold bool) *Aggregator {
	return &Aggregator{
		plan: plan,
		hold: hold,
		p: Progress{
			TargetReps: plan.TargetReps,
			TotalSets:  plan.TotalSets,
			CurrentSet: 1,
		},
	}
}

// Accepting reports whether detector results are currently counted.
func (a *Aggregator) Accepting() bool {
	return !a.p.Resting && !a.p.SetComplete && !a.p.WorkoutComplete
}

// Record applies one detector result and reports whether it completed the set.
// Results are ignored while resting or after the set target is reached.
func (a *Aggregator) Record(r rep.Result) bool {
	if !a.Accepting() {
		return false
	}
	if r.PartialRep {
		a.p.PartialReps++
	}

	if a.hold {
		a.p.Hold = r.Hold
		secs := min(int(r.Hold/time.Second), a.plan.TargetReps)
		a.p.TotalReps += secs - a.p.RepsInSet
		a.p.RepsInSet = secs
	} else if r.RepDetected {
		a.p.RepsInSet++
		a.p.TotalReps++
	}

	if a.p.RepsInSet >= a.plan.TargetReps {
		a.p.SetComplete = true
		a.p.Resting = true
		a.p.RestRemaining = a.plan.Rest
		return true
	}
	return false
}

// Tick advances the rest countdown by one second. It reports whether the
// next set started; on the final set the workout is marked complete instead.
func (a *Aggregator) Tick() (advanced bool) {
	if !a.p.Resting {
		return false
	}
	a.p.RestRemaining -= time.Second
	if a.p.RestRemaining > 0 {
		return false
	}

	a.p.Resting = false
	a.p.RestRemaining = 0
	if a.p.CurrentSet >= a.plan.TotalSets {
		a.p.WorkoutComplete = true
		return false
	}
	a.p.CurrentSet++
	a.p.RepsInSet = 0
	a.p.Hold = 0
	a.p.SetComplete = false
	return true
}

// Progress returns a copy of the current progress.
func (a *Aggregator) Progress() Progress {
	return a.p
}
