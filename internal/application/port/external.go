package port

import (
	"context"
	"errors"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// ErrExtractionFailed marks an OCR collaborator failure for one receipt
var ErrExtractionFailed = errors.New("receipt extraction failed")

// ReceiptRef identifies one receipt image
type ReceiptRef struct {
	URL  string
	Name string
}

// RawFields is the structured JSON an OCR collaborator returns for a receipt.
// Values are left untyped and coerced during normalization.
type RawFields struct {
	ExpenseID       any `json:"expense_id"`
	Vendor          any `json:"vendor"`
	MerchantAddress any `json:"merchant_address"`
	MerchantPhone   any `json:"merchant_phone"`
	Date            any `json:"date"`
	Category        any `json:"category"`
	Items           any `json:"items"`
	Subtotal        any `json:"subtotal"`
	Taxes           any `json:"taxes"`
	Tips            any `json:"tips"`
	Amount          any `json:"amount"`
	SubmittedBy     any `json:"submitted_by"`
}

// ReceiptExtractor obtains structured fields for one receipt image.
// Any returned error is treated as an extraction failure for that receipt only.
type ReceiptExtractor interface {
	Extract(ctx context.Context, ref ReceiptRef) (*RawFields, error)
}

// ReceiptSource lists and reads receipt images
type ReceiptSource interface {
	List(ctx context.Context, dirURL string) ([]ReceiptRef, error)
	Read(ctx context.Context, ref ReceiptRef) ([]byte, error)
}

// PDFRasterizer turns a PDF receipt into JPEG page images
type PDFRasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error)
}

// PolicyDocumentReader extracts paragraph text from a policy document
type PolicyDocumentReader interface {
	Paragraphs(ctx context.Context, path string) ([]string, error)
}

// ReviewRequest is the exception summary shown to a reviewer
type ReviewRequest struct {
	ExpenseID      string
	Vendor         string
	Amount         *float64
	Reason         string
	SourceImageRef string
}

// ReviewResponse is what a reviewer answers
type ReviewResponse struct {
	Decision entity.Decision
	Comment  string
	Reviewer string
}

// Reviewer blocks until a human decision is available or ctx is done
type Reviewer interface {
	RequestDecision(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error)
}

// ReviewNotifier tells a reviewer that a ticket is waiting
type ReviewNotifier interface {
	NotifyPending(ctx context.Context, req *ReviewRequest, link string) error
}

// ReportData is everything a report writer renders
type ReportData struct {
	RunID        string
	PolicySource entity.PolicySource
	Records      []*entity.ExpenseRecord
	Summary      entity.RunSummary
}

// ReportWriter persists the tabular report
type ReportWriter interface {
	Write(ctx context.Context, data *ReportData) error
}
