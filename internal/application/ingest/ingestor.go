package ingest

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// Ingestor turns receipt references into Pending expense records, one per reference
type Ingestor struct {
	extractor port.ReceiptExtractor
	now       func() time.Time
	logger    *zap.Logger
}

// NewIngestor creates a new receipt ingestor
func NewIngestor(extractor port.ReceiptExtractor, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the time source used for SubmittedAt
func (i *Ingestor) WithClock(now func() time.Time) *Ingestor {
	i.now = now
	return i
}

// Ingest processes every reference in order. The result always has len(refs) records.
func (i *Ingestor) Ingest(ctx context.Context, refs []port.ReceiptRef) []*entity.ExpenseRecord {
	records := make([]*entity.ExpenseRecord, 0, len(refs))
	for idx, ref := range refs {
		records = append(records, i.IngestOne(ctx, idx, ref))
	}
	return records
}

// IngestOne extracts and normalizes a single receipt. It never fails; an
// extraction failure yields a record with no extracted fields and
// ExtractionFailed set.
func (i *Ingestor) IngestOne(ctx context.Context, index int, ref port.ReceiptRef) *entity.ExpenseRecord {
	name := ref.Name
	if name == "" {
		name = path.Base(ref.URL)
	}
	record := entity.NewPendingRecord(defaultExpenseID(index), ref.URL, name, i.now())

	raw, err := i.extract(ctx, ref)
	if err != nil {
		record.ExtractionFailed = true
		record.ExtractionError = err.Error()
		i.logger.Warn("Receipt extraction failed",
			zap.String("expense_id", record.ExpenseID),
			zap.String("receipt", ref.URL),
			zap.Error(err))
		return record
	}

	normalize(record, raw)

	i.logger.Debug("Receipt ingested",
		zap.String("expense_id", record.ExpenseID),
		zap.String("receipt", ref.URL),
		zap.String("vendor", record.VendorName()))

	return record
}

func (i *Ingestor) extract(ctx context.Context, ref port.ReceiptRef) (raw *port.RawFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("%w: extractor panicked: %v", port.ErrExtractionFailed, r)
		}
	}()

	if i.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", port.ErrExtractionFailed)
	}

	raw, err = i.extractor.Extract(ctx, ref)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty extraction result", port.ErrExtractionFailed)
	}
	return raw, nil
}
