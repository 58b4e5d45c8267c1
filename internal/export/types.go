package export

import "time"

// Stage describes a high-level export phase.
type Stage string

const (
	// StageSelect is the requested-name expansion stage.
	StageSelect Stage = "select"
	// StageClassify is the dependency classification stage.
	StageClassify Stage = "classify"
	// StageResolve is the graph ordering stage.
	StageResolve Stage = "resolve"
	// StageEmit is the declaration emission stage.
	StageEmit Stage = "emit"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the type is waiting to be processed.
	StatusQueued Status = "queued"
	// StatusWorking indicates the type is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the type is done.
	StatusDone Status = "done"
	// StatusError indicates processing failed.
	StatusError Status = "error"
)

// Event reports progress for one type (or for the overall export when
// TypeName is empty).
type Event struct {
	TypeName string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
