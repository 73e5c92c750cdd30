package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/persistence/sqlite"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sqlite.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	expense_id, source_image_ref, file_name, vendor, expense_date, amount, category,
	items, merchant_address, merchant_phone, subtotal, taxes, tips, submitted_by,
	extraction_failed, extraction_error, status, exception_reason,
	decision, decision_comment, reviewer, decided_at, submitted_at`

// Save inserts the record at position in runID or updates the stored copy
func (r *ExpenseRepository) Save(ctx context.Context, runID string, position int, record *entity.ExpenseRecord) error {
	items, err := json.Marshal(nonNil(record.Items))
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	var decision, comment, reviewer sql.NullString
	var decidedAt sql.NullTime
	if d := record.ReviewDecision; d != nil {
		decision = sql.NullString{String: string(d.Decision), Valid: true}
		comment = sql.NullString{String: d.Comment, Valid: true}
		reviewer = sql.NullString{String: d.Reviewer, Valid: true}
		decidedAt = sql.NullTime{Time: d.Timestamp, Valid: !d.Timestamp.IsZero()}
	}

	query := `
		INSERT INTO expenses (run_id, position, ` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, position) DO UPDATE SET
			expense_id = excluded.expense_id,
			source_image_ref = excluded.source_image_ref,
			file_name = excluded.file_name,
			vendor = excluded.vendor,
			expense_date = excluded.expense_date,
			amount = excluded.amount,
			category = excluded.category,
			items = excluded.items,
			merchant_address = excluded.merchant_address,
			merchant_phone = excluded.merchant_phone,
			subtotal = excluded.subtotal,
			taxes = excluded.taxes,
			tips = excluded.tips,
			submitted_by = excluded.submitted_by,
			extraction_failed = excluded.extraction_failed,
			extraction_error = excluded.extraction_error,
			status = excluded.status,
			exception_reason = excluded.exception_reason,
			decision = excluded.decision,
			decision_comment = excluded.decision_comment,
			reviewer = excluded.reviewer,
			decided_at = excluded.decided_at,
			submitted_at = excluded.submitted_at
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		runID,
		position,
		record.ExpenseID,
		record.SourceImageRef,
		record.FileName,
		record.Vendor,
		record.Date,
		record.Amount,
		record.Category,
		string(items),
		record.MerchantAddress,
		record.MerchantPhone,
		record.Subtotal,
		record.Taxes,
		record.Tips,
		record.SubmittedBy,
		record.ExtractionFailed,
		record.ExtractionError,
		string(record.Status),
		record.ExceptionReason,
		decision,
		comment,
		reviewer,
		decidedAt,
		record.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save expense",
			zap.String("run_id", runID),
			zap.Int("position", position),
			zap.String("expense_id", record.ExpenseID),
			zap.Error(err))
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// ListByRun returns the run's records in processing order
func (r *ExpenseRepository) ListByRun(ctx context.Context, runID string) ([]*entity.ExpenseRecord, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE run_id = ? ORDER BY position ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, runID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExpenseRecord
	for rows.Next() {
		record, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanExpense(rows *sql.Rows) (*entity.ExpenseRecord, error) {
	var (
		record                                           entity.ExpenseRecord
		vendor, date, category, address, phone, submitBy sql.NullString
		amount, subtotal, taxes, tips                    sql.NullFloat64
		items, status                                    string
		decision, comment, reviewer                      sql.NullString
		decidedAt                                        sql.NullTime
	)

	err := rows.Scan(
		&record.ExpenseID,
		&record.SourceImageRef,
		&record.FileName,
		&vendor,
		&date,
		&amount,
		&category,
		&items,
		&address,
		&phone,
		&subtotal,
		&taxes,
		&tips,
		&submitBy,
		&record.ExtractionFailed,
		&record.ExtractionError,
		&status,
		&record.ExceptionReason,
		&decision,
		&comment,
		&reviewer,
		&decidedAt,
		&record.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	if err := json.Unmarshal([]byte(items), &record.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	if len(record.Items) == 0 {
		record.Items = nil
	}

	record.Vendor = nullString(vendor)
	record.Date = nullString(date)
	record.Category = nullString(category)
	record.MerchantAddress = nullString(address)
	record.MerchantPhone = nullString(phone)
	record.SubmittedBy = nullString(submitBy)
	record.Amount = nullFloat(amount)
	record.Subtotal = nullFloat(subtotal)
	record.Taxes = nullFloat(taxes)
	record.Tips = nullFloat(tips)
	record.Status = entity.Status(status)

	if decision.Valid {
		record.ReviewDecision = &entity.ReviewDecision{
			Decision: entity.Decision(decision.String),
			Comment:  comment.String,
			Reviewer: reviewer.String,
		}
		if decidedAt.Valid {
			record.ReviewDecision.Timestamp = decidedAt.Time
		}
	}

	return &record, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
