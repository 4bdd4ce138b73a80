package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// StageDone is appended to the trace when a sequence finishes successfully.
	StageDone = "done"

	stageErrorTemplateConstant     = "%s: %v"
	stageStartedLogMessageConstant = "Stage started"
	stageHaltedLogMessageConstant  = "Stage halted the sequence"
	stageFailedLogMessageConstant  = "Stage failed"
	sequenceFieldNameConstant      = "sequence"
	stageFieldNameConstant         = "stage"
)

// ErrHalt ends a sequence successfully from inside a stage. The remaining stages are skipped.
var ErrHalt = errors.New("workflow halted")

// Stage is one named step of a sequence.
type Stage struct {
	Name string
	Run  func(executionContext context.Context) error
}

// StageError wraps the failure of a single stage.
type StageError struct {
	Stage string
	Cause error
}

func (stageError StageError) Error() string {
	return fmt.Sprintf(stageErrorTemplateConstant, stageError.Stage, stageError.Cause)
}

// Unwrap exposes the underlying failure.
func (stageError StageError) Unwrap() error {
	return stageError.Cause
}

// Trace lists the stages a sequence visited, in order.
type Trace []string

// Sequence runs stages one after another and stops at the first failure. There is no rollback.
type Sequence struct {
	name   string
	logger *zap.Logger
	stages []Stage
}

// NewSequence constructs a sequence. A nil logger discards stage logs.
func NewSequence(name string, logger *zap.Logger, stages ...Stage) *Sequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequence{name: name, logger: logger, stages: append([]Stage{}, stages...)}
}

// Run executes the stages and returns the visited trace. A failing stage is the last trace entry;
// successful runs, including halted ones, end with StageDone.
func (sequence *Sequence) Run(executionContext context.Context) (Trace, error) {
	trace := make(Trace, 0, len(sequence.stages)+1)
	for _, stage := range sequence.stages {
		if contextError := executionContext.Err(); contextError != nil {
			return trace, StageError{Stage: stage.Name, Cause: contextError}
		}

		trace = append(trace, stage.Name)
		sequence.logger.Debug(stageStartedLogMessageConstant, zap.String(sequenceFieldNameConstant, sequence.name), zap.String(stageFieldNameConstant, stage.Name))

		if stage.Run == nil {
			continue
		}
		stageError := stage.Run(executionContext)
		if stageError == nil {
			continue
		}
		if errors.Is(stageError, ErrHalt) {
			sequence.logger.Debug(stageHaltedLogMessageConstant, zap.String(sequenceFieldNameConstant, sequence.name), zap.String(stageFieldNameConstant, stage.Name))
			break
		}
		sequence.logger.Debug(stageFailedLogMessageConstant, zap.String(sequenceFieldNameConstant, sequence.name), zap.String(stageFieldNameConstant, stage.Name), zap.Error(stageError))
		return trace, StageError{Stage: stage.Name, Cause: stageError}
	}

	return append(trace, StageDone), nil
}
