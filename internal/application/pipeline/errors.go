package pipeline

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the run context is cancelled between or during receipts
var ErrCancelled = errors.New("pipeline cancelled")

// Stage names a pipeline step
type Stage string

const (
	StagePolicy   Stage = "policy"
	StageIngest   Stage = "ingest"
	StageValidate Stage = "validate"
	StageReview   Stage = "review"
	StageReport   Stage = "report"
)

// StageError reports which stage stopped a run
type StageError struct {
	Stage     Stage
	ExpenseID string
	Err       error
}

func (e *StageError) Error() string {
	if e.ExpenseID != "" {
		return fmt.Sprintf("%s stage failed for %s: %v", e.Stage, e.ExpenseID, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
