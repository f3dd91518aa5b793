// Package progress reports completed sets to the remote progress log.
//
// Records are written to a local outbox first and delivered in order, so
// progress made while offline is sent once the endpoint is reachable again.
package progress

// Record is one completed set as sent to the progress endpoint.
type Record struct {
	UserEmail    string `json:"userEmail"`
	ExerciseName string `json:"exerciseName"`
	CurrentSet   int    `json:"currentSet"`
	TotalSets    int    `json:"totalSets"`
	TargetReps   int    `json:"targetReps"`
	CurrentReps  int    `json:"currentReps"`
}

// Response is the endpoint's acknowledgement.
type Response struct {
	Completed  bool   `json:"completed"`
	Reps       int    `json:"reps"`
	Feedback   string `json:"feedback"`
	CurrentSet int    `json:"currentSet"`
	TotalSets  int    `json:"totalSets"`
}
