package entity

import "time"

// RunStatus constants for Run
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// Run is one pipeline invocation as kept in the ledger
type Run struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	PolicySource string     `json:"policy_source"`
	Status       string     `json:"status"`
	FailedStage  string     `json:"failed_stage,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// ExpenseHistory is one lifecycle transition of an expense in a run.
// Position is the 1-based receipt order within the run.
type ExpenseHistory struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	Position      int       `json:"position"`
	ExpenseID     string    `json:"expense_id"`
	PreviousState string    `json:"previous_state"`
	NewState      string    `json:"new_state"`
	Trigger       string    `json:"trigger"`
	Timestamp     time.Time `json:"timestamp"`
}
