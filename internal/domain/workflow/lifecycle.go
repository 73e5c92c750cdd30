package workflow

import (
	"fmt"
	"time"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// BuildExpenseLifecycle creates the state machine for one expense record.
//
//	PENDING --ACCEPT--> ACCEPTED
//	PENDING --FLAG----> EXCEPTION --APPROVE|REJECT--> REVIEWED
func BuildExpenseLifecycle(initialState State, now func() time.Time) StateMachine {
	builder := NewBuilder().WithClock(now)

	builder.Configure(StatePending).
		Permit(TriggerAccept, StateAccepted).
		Permit(TriggerFlag, StateException)

	builder.Configure(StateException).
		Permit(TriggerApprove, StateReviewed).
		Permit(TriggerReject, StateReviewed)

	// ACCEPTED and REVIEWED are terminal

	return builder.Build(initialState)
}

// LifecycleState maps a record onto its lifecycle state
func LifecycleState(record *entity.ExpenseRecord) (State, error) {
	if record == nil {
		return "", fmt.Errorf("%w: nil record", ErrInvalidState)
	}

	switch record.Status {
	case entity.StatusPending:
		if record.ReviewDecision != nil {
			return "", fmt.Errorf("%w: pending record %s carries a review decision", ErrInvalidState, record.ExpenseID)
		}
		return StatePending, nil
	case entity.StatusAccepted:
		if record.ReviewDecision != nil {
			return "", fmt.Errorf("%w: accepted record %s carries a review decision", ErrInvalidState, record.ExpenseID)
		}
		return StateAccepted, nil
	case entity.StatusException:
		if record.ReviewDecision != nil {
			return StateReviewed, nil
		}
		return StateException, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrInvalidState, record.Status)
	}
}

// VerdictTrigger returns the trigger matching a validated record's status
func VerdictTrigger(record *entity.ExpenseRecord) (Trigger, error) {
	switch record.Status {
	case entity.StatusAccepted:
		return TriggerAccept, nil
	case entity.StatusException:
		return TriggerFlag, nil
	default:
		return "", fmt.Errorf("%w: record %s has no verdict", ErrInvalidState, record.ExpenseID)
	}
}

// DecisionTrigger returns the trigger matching a reviewer decision
func DecisionTrigger(decision entity.Decision) (Trigger, error) {
	switch decision {
	case entity.DecisionApprove:
		return TriggerApprove, nil
	case entity.DecisionReject:
		return TriggerReject, nil
	default:
		return "", fmt.Errorf("%w: decision %q", ErrInvalidState, decision)
	}
}
