package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/ingest"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/policy"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/review"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/validation"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/workflow"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/tracing"
)

// Input is one run's configuration
type Input struct {
	PolicyRef string
	Receipts  []port.ReceiptRef
}

// Options tune reporting behavior
type Options struct {
	// CountApprovedAsAccepted adds approved exceptions to the reimbursable totals
	CountApprovedAsAccepted bool
}

// Pipeline drives policy loading, ingestion, validation and review, one receipt at a time
type Pipeline struct {
	policies  *policy.Store
	ingestor  *ingest.Ingestor
	validator *validation.Validator
	router    *review.Router
	recorder  port.RunRecorder
	writer    port.ReportWriter
	options   Options
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// New creates a new pipeline. recorder and writer may be nil.
func New(
	policies *policy.Store,
	ingestor *ingest.Ingestor,
	validator *validation.Validator,
	router *review.Router,
	recorder port.RunRecorder,
	writer port.ReportWriter,
	options Options,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		policies:  policies,
		ingestor:  ingestor,
		validator: validator,
		router:    router,
		recorder:  recorder,
		writer:    writer,
		options:   options,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// WithClock overrides the time source used for lifecycle history and run timestamps
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run processes every receipt in order. On a fatal error the state
// processed so far is returned together with a *StageError so the caller
// can still write a partial report.
func (p *Pipeline) Run(ctx context.Context, in Input) (*WorkflowState, error) {
	state := newWorkflowState(p.newID(), p.now())
	logger := p.logger.With(zap.String("run_id", state.RunID))

	ctx, span := tracing.StartSpan(ctx, "pipeline.run",
		attribute.String("run_id", state.RunID),
		attribute.Int("receipts", len(in.Receipts)))

	result := p.loadPolicy(ctx, in.PolicyRef)
	state.Rules = result.Rules
	state.PolicySource = result.Source

	run := &entity.Run{
		ID:           state.RunID,
		StartedAt:    state.StartedAt,
		PolicySource: string(state.PolicySource),
		Status:       entity.RunStatusRunning,
	}
	p.startRun(ctx, run, logger)

	logger.Info("Pipeline started",
		zap.String("policy_source", string(state.PolicySource)),
		zap.Int("receipts", len(in.Receipts)))

	err := p.processAll(ctx, state, in.Receipts, logger)

	p.finishRun(ctx, run, state, err, logger)
	tracing.EndSpan(span, err)

	if err != nil {
		logger.Error("Pipeline stopped",
			zap.String("stage", string(state.FailedStage)),
			zap.Int("processed", state.Processed),
			zap.Error(err))
		return state, err
	}

	logger.Info("Pipeline completed",
		zap.Int("processed", state.Processed),
		zap.Int("exceptions", state.ExceptionCount))

	return state, nil
}

func (p *Pipeline) processAll(ctx context.Context, state *WorkflowState, refs []port.ReceiptRef, logger *zap.Logger) error {
	for idx, ref := range refs {
		if err := ctx.Err(); err != nil {
			return p.stop(state, &StageError{Stage: StageIngest, Err: fmt.Errorf("%w: %w", ErrCancelled, err)})
		}

		record, history, err := p.processOne(ctx, state.Rules, idx, ref)
		if err != nil {
			return p.stop(state, err)
		}

		state.append(record)
		p.recordExpense(ctx, state.RunID, idx+1, record, history, logger)
	}
	return nil
}

func (p *Pipeline) processOne(ctx context.Context, rules entity.PolicyRuleSet, idx int, ref port.ReceiptRef) (*entity.ExpenseRecord, []workflow.Transition, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.receipt", attribute.String("receipt", ref.URL))
	record, history, err := p.advance(ctx, rules, idx, ref)
	tracing.EndSpan(span, err)
	return record, history, err
}

func (p *Pipeline) advance(ctx context.Context, rules entity.PolicyRuleSet, idx int, ref port.ReceiptRef) (*entity.ExpenseRecord, []workflow.Transition, error) {
	ingestCtx, ingestSpan := tracing.StartSpan(ctx, "pipeline.ingest")
	record := p.ingestor.IngestOne(ingestCtx, idx, ref)
	if record.ExtractionFailed {
		ingestSpan.SetAttributes(attribute.Bool("extraction_failed", true))
	}
	tracing.EndSpan(ingestSpan, nil)

	machine := workflow.BuildExpenseLifecycle(workflow.StatePending, p.now)

	_, validateSpan := tracing.StartSpan(ctx, "pipeline.validate", attribute.String("expense_id", record.ExpenseID))
	record = p.validator.Validate(record, rules)
	err := p.fire(ctx, machine, record)
	tracing.EndSpan(validateSpan, err)
	if err != nil {
		return nil, nil, &StageError{Stage: StageValidate, ExpenseID: record.ExpenseID, Err: err}
	}

	if record.Status != entity.StatusException {
		return record, machine.History(), nil
	}

	reviewCtx, reviewSpan := tracing.StartSpan(ctx, "pipeline.review", attribute.String("expense_id", record.ExpenseID))
	reviewed, err := p.router.Review(reviewCtx, record)
	if err == nil {
		err = p.fire(ctx, machine, reviewed)
	}
	tracing.EndSpan(reviewSpan, err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return nil, nil, &StageError{Stage: StageReview, ExpenseID: record.ExpenseID, Err: err}
	}

	return reviewed, machine.History(), nil
}

// fire moves the lifecycle forward to match the record
func (p *Pipeline) fire(ctx context.Context, machine workflow.StateMachine, record *entity.ExpenseRecord) error {
	var (
		trigger workflow.Trigger
		err     error
	)
	if record.ReviewDecision != nil {
		trigger, err = workflow.DecisionTrigger(record.ReviewDecision.Decision)
	} else {
		trigger, err = workflow.VerdictTrigger(record)
	}
	if err != nil {
		return err
	}
	return machine.Fire(ctx, trigger)
}

func (p *Pipeline) loadPolicy(ctx context.Context, ref string) policy.LoadResult {
	ctx, span := tracing.StartSpan(ctx, "pipeline.policy")
	defer tracing.EndSpan(span, nil)

	result := p.policies.Load(ctx, ref)
	span.SetAttributes(attribute.String("policy_source", string(result.Source)))
	return result
}

func (p *Pipeline) stop(state *WorkflowState, err error) error {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		state.FailedStage = stageErr.Stage
	}
	return err
}

// WriteReport hands the current state, complete or partial, to the report writer
func (p *Pipeline) WriteReport(ctx context.Context, state *WorkflowState) error {
	if p.writer == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "pipeline.report", attribute.Int("records", len(state.Records)))
	err := p.writer.Write(ctx, &port.ReportData{
		RunID:        state.RunID,
		PolicySource: state.PolicySource,
		Records:      state.Records,
		Summary:      state.Summary(p.options.CountApprovedAsAccepted),
	})
	tracing.EndSpan(span, err)
	if err != nil {
		return &StageError{Stage: StageReport, Err: err}
	}
	return nil
}

func (p *Pipeline) startRun(ctx context.Context, run *entity.Run, logger *zap.Logger) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.StartRun(ctx, run); err != nil {
		logger.Warn("Failed to record run start", zap.Error(err))
	}
}

func (p *Pipeline) recordExpense(ctx context.Context, runID string, position int, record *entity.ExpenseRecord, transitions []workflow.Transition, logger *zap.Logger) {
	if p.recorder == nil {
		return
	}

	history := make([]*entity.ExpenseHistory, 0, len(transitions))
	for _, t := range transitions {
		history = append(history, &entity.ExpenseHistory{
			RunID:         runID,
			Position:      position,
			ExpenseID:     record.ExpenseID,
			PreviousState: t.From.String(),
			NewState:      t.To.String(),
			Trigger:       t.Trigger.String(),
			Timestamp:     t.At,
		})
	}

	if err := p.recorder.RecordExpense(ctx, runID, position, record, history); err != nil {
		logger.Warn("Failed to record expense",
			zap.String("expense_id", record.ExpenseID),
			zap.Error(err))
	}
}

func (p *Pipeline) finishRun(ctx context.Context, run *entity.Run, state *WorkflowState, runErr error, logger *zap.Logger) {
	if p.recorder == nil {
		return
	}

	finished := p.now()
	run.FinishedAt = &finished
	run.Status = entity.RunStatusCompleted
	if runErr != nil {
		run.Status = entity.RunStatusFailed
		run.FailedStage = string(state.FailedStage)
		run.Error = runErr.Error()
	}

	// the run context may already be cancelled; the ledger still needs the outcome
	if err := p.recorder.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to record run finish", zap.Error(err))
	}
}
