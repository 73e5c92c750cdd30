package pipeline

import (
	"time"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// WorkflowState is owned by a single Run call. Records only grow, in input order.
type WorkflowState struct {
	RunID        string
	StartedAt    time.Time
	Rules        entity.PolicyRuleSet
	PolicySource entity.PolicySource
	Records      []*entity.ExpenseRecord

	Processed      int
	ExceptionCount int

	// FailedStage is set when the run stopped early
	FailedStage Stage
}

func newWorkflowState(runID string, startedAt time.Time) *WorkflowState {
	return &WorkflowState{
		RunID:     runID,
		StartedAt: startedAt,
	}
}

func (s *WorkflowState) append(record *entity.ExpenseRecord) {
	s.Records = append(s.Records, record)
	s.Processed++
	if record.Status == entity.StatusException {
		s.ExceptionCount++
	}
}

// Accepted returns the Accepted records in processing order
func (s *WorkflowState) Accepted() []*entity.ExpenseRecord {
	return s.filter(entity.StatusAccepted)
}

// Exceptions returns the Exception records, reviewed or not, in processing order
func (s *WorkflowState) Exceptions() []*entity.ExpenseRecord {
	return s.filter(entity.StatusException)
}

// Summary computes run totals; see entity.Summarize for how approved exceptions count
func (s *WorkflowState) Summary(countApprovedAsAccepted bool) entity.RunSummary {
	return entity.Summarize(s.Records, countApprovedAsAccepted)
}

func (s *WorkflowState) filter(status entity.Status) []*entity.ExpenseRecord {
	var out []*entity.ExpenseRecord
	for _, r := range s.Records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
