// Package pipeline carries compilation progress from the driver to
// whatever renders it.
package pipeline

import "time"

// Stage describes a compilation pass.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageDeclare Stage = "declare"
	StageLower   Stage = "lower"
	StageVerify  Stage = "verify"
	StageEmit    Stage = "emit"
)

// Stages lists the passes in execution order.
var Stages = []Stage{StageDecode, StageDeclare, StageLower, StageVerify, StageEmit}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a unit, or for the whole compilation when
// Unit is empty.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be
// goroutine-safe.
type ProgressSink interface {
	OnEvent(Event)
}

// Progress returns the share of work a stage represents once it is
// reached, in [0, 1].
func Progress(stage Stage) float64 {
	for i, s := range Stages {
		if s == stage {
			return float64(i) / float64(len(Stages))
		}
	}
	return 0
}
