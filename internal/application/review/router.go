package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// Router hands exceptions to a human reviewer and records the decision
type Router struct {
	reviewer        port.Reviewer
	defaultReviewer string
	now             func() time.Time
	logger          *zap.Logger
}

// NewRouter creates a new exception router
func NewRouter(reviewer port.Reviewer, defaultReviewer string, logger *zap.Logger) *Router {
	return &Router{
		reviewer:        reviewer,
		defaultReviewer: defaultReviewer,
		now:             time.Now,
		logger:          logger,
	}
}

// WithClock overrides the time source used to stamp decisions
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Review blocks until the reviewer decides, then returns a copy of record
// carrying the decision. The status stays Exception for both outcomes.
// There is no timeout; cancelling ctx is the only way to stop waiting.
func (r *Router) Review(ctx context.Context, record *entity.ExpenseRecord) (*entity.ExpenseRecord, error) {
	if record == nil || record.Status != entity.StatusException || record.ReviewDecision != nil {
		return nil, ErrNotReviewable
	}
	if r.reviewer == nil {
		return nil, fmt.Errorf("%w: no reviewer configured", ErrReviewerUnavailable)
	}

	req := &port.ReviewRequest{
		ExpenseID:      record.ExpenseID,
		Vendor:         record.VendorName(),
		Amount:         record.Amount,
		Reason:         record.ExceptionReason,
		SourceImageRef: record.SourceImageRef,
	}

	r.logger.Info("Awaiting review decision",
		zap.String("expense_id", req.ExpenseID),
		zap.String("reason", req.Reason))

	resp, err := r.reviewer.RequestDecision(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrReviewerUnavailable, err)
	}
	if resp == nil || !resp.Decision.IsValid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidDecision, resp)
	}

	reviewer := resp.Reviewer
	if reviewer == "" {
		reviewer = r.defaultReviewer
	}

	out := record.Clone()
	out.ReviewDecision = &entity.ReviewDecision{
		Decision:  resp.Decision,
		Comment:   resp.Comment,
		Reviewer:  reviewer,
		Timestamp: r.now(),
	}

	r.logger.Info("Review decision recorded",
		zap.String("expense_id", out.ExpenseID),
		zap.String("decision", string(resp.Decision)),
		zap.String("reviewer", reviewer))

	return out, nil
}
