package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// Recorder keeps runs, processed expenses and their lifecycle history in
// the repositories. It implements port.RunRecorder.
type Recorder struct {
	runs      port.RunRepository
	expenses  port.ExpenseRepository
	history   port.HistoryRepository
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewRecorder creates a new ledger recorder
func NewRecorder(
	runs port.RunRepository,
	expenses port.ExpenseRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) *Recorder {
	return &Recorder{
		runs:      runs,
		expenses:  expenses,
		history:   history,
		txManager: txManager,
		logger:    logger,
	}
}

// StartRun stores a new run
func (r *Recorder) StartRun(ctx context.Context, run *entity.Run) error {
	if err := r.runs.Create(ctx, run); err != nil {
		r.logger.Error("Failed to start run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}
	r.logger.Debug("Run started", zap.String("run_id", run.ID))
	return nil
}

// RecordExpense stores the record and its transitions atomically
func (r *Recorder) RecordExpense(ctx context.Context, runID string, position int, record *entity.ExpenseRecord, history []*entity.ExpenseHistory) error {
	err := r.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := r.expenses.Save(txCtx, runID, position, record); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}

		for _, h := range history {
			h.RunID = runID
			h.Position = position
			h.ExpenseID = record.ExpenseID
			if err := r.history.Create(txCtx, h); err != nil {
				return fmt.Errorf("create history: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		r.logger.Error("Failed to record expense",
			zap.String("run_id", runID),
			zap.Int("position", position),
			zap.String("expense_id", record.ExpenseID),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Expense recorded",
		zap.String("run_id", runID),
		zap.Int("position", position),
		zap.String("expense_id", record.ExpenseID),
		zap.Int("transitions", len(history)))
	return nil
}

// FinishRun stores the final status of the run
func (r *Recorder) FinishRun(ctx context.Context, run *entity.Run) error {
	if err := r.runs.Finish(ctx, run); err != nil {
		r.logger.Error("Failed to finish run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}
	r.logger.Info("Run recorded",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status))
	return nil
}

var _ port.RunRecorder = (*Recorder)(nil)
