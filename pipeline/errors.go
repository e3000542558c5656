package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStages is returned for an empty phase assignment.
	ErrNoStages = errors.New("pipeline has no stages")
	// ErrNoOutput is returned when a stage halts without emitting a value.
	ErrNoOutput = errors.New("stage produced no output")
	// ErrRingUsed is returned when a Ring is run more than once.
	ErrRingUsed = errors.New("ring already run")
)

// StageError attributes a failure to one pipeline stage.
type StageError struct {
	Stage int
	Phase int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (phase %d): %v", e.Stage, e.Phase, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
