package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/persistence/sqlite"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("record not found")

// RunRepository implements port.RunRepository
type RunRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlite.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new run
func (r *RunRepository) Create(ctx context.Context, run *entity.Run) error {
	query := `
		INSERT INTO runs (id, started_at, policy_source, status, failed_stage, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		run.ID,
		run.StartedAt,
		run.PolicySource,
		run.Status,
		run.FailedStage,
		run.Error,
	)
	if err != nil {
		r.logger.Error("Failed to create run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Finish stores the final status of a run
func (r *RunRepository) Finish(ctx context.Context, run *entity.Run) error {
	query := `
		UPDATE runs
		SET finished_at = ?, status = ?, failed_stage = ?, error = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		run.FinishedAt,
		run.Status,
		run.FailedStage,
		run.Error,
		run.ID,
	)
	if err != nil {
		r.logger.Error("Failed to finish run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to finish run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, run.ID)
	}
	return nil
}

// GetByID retrieves a run
func (r *RunRepository) GetByID(ctx context.Context, id string) (*entity.Run, error) {
	query := `
		SELECT id, started_at, finished_at, policy_source, status, failed_stage, error
		FROM runs
		WHERE id = ?
	`

	var (
		run      entity.Run
		finished sql.NullTime
	)
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.StartedAt,
		&finished,
		&run.PolicySource,
		&run.Status,
		&run.FailedStage,
		&run.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// Verify interface compliance
var _ port.RunRepository = (*RunRepository)(nil)
