package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new history record
func (r *HistoryRepository) Create(ctx context.Context, history *entity.ExpenseHistory) error {
	query := `
		INSERT INTO expense_history (
			run_id, position, expense_id, previous_state, new_state, trigger_name, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		history.RunID,
		history.Position,
		history.ExpenseID,
		history.PreviousState,
		history.NewState,
		history.Trigger,
		history.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// ListByPosition retrieves the transitions of the receipt at position in insertion order
func (r *HistoryRepository) ListByPosition(ctx context.Context, runID string, position int) ([]*entity.ExpenseHistory, error) {
	query := `
		SELECT id, run_id, position, expense_id, previous_state, new_state, trigger_name, created_at
		FROM expense_history
		WHERE run_id = ? AND position = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, runID, position)
	if err != nil {
		r.logger.Error("Failed to list history",
			zap.String("run_id", runID),
			zap.Int("position", position),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExpenseHistory
	for rows.Next() {
		var record entity.ExpenseHistory
		err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.Position,
			&record.ExpenseID,
			&record.PreviousState,
			&record.NewState,
			&record.Trigger,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
