package port

import (
	"context"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// RunRepository defines persistence operations for Run
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	Finish(ctx context.Context, run *entity.Run) error
	GetByID(ctx context.Context, id string) (*entity.Run, error)
}

// ExpenseRepository defines persistence operations for processed expenses
type ExpenseRepository interface {
	Save(ctx context.Context, runID string, position int, record *entity.ExpenseRecord) error
	ListByRun(ctx context.Context, runID string) ([]*entity.ExpenseRecord, error)
}

// HistoryRepository defines persistence operations for ExpenseHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.ExpenseHistory) error
	ListByPosition(ctx context.Context, runID string, position int) ([]*entity.ExpenseHistory, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunRecorder keeps a durable ledger of a pipeline run. Expenses are keyed by
// their 1-based receipt position, since OCR expense ids may repeat.
type RunRecorder interface {
	StartRun(ctx context.Context, run *entity.Run) error
	RecordExpense(ctx context.Context, runID string, position int, record *entity.ExpenseRecord, history []*entity.ExpenseHistory) error
	FinishRun(ctx context.Context, run *entity.Run) error
}
