package entity

import (
	"strings"
	"time"
)

// ReviewDecision is the human verdict attached to an exception
type ReviewDecision struct {
	Decision  Decision  `json:"decision"`
	Comment   string    `json:"comment"`
	Reviewer  string    `json:"reviewer"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpenseRecord is one receipt as it moves through the pipeline.
// Optional extracted fields are nil when the OCR result did not carry them.
type ExpenseRecord struct {
	ExpenseID      string `json:"expense_id"`
	SourceImageRef string `json:"source_image_ref"`
	FileName       string `json:"file_name"`

	Vendor   *string  `json:"vendor,omitempty"`
	Date     *string  `json:"date,omitempty"` // ISO 2006-01-02
	Amount   *float64 `json:"amount,omitempty"`
	Category *string  `json:"category,omitempty"`
	Items    []string `json:"items,omitempty"`

	MerchantAddress *string  `json:"merchant_address,omitempty"`
	MerchantPhone   *string  `json:"merchant_phone,omitempty"`
	Subtotal        *float64 `json:"subtotal,omitempty"`
	Taxes           *float64 `json:"taxes,omitempty"`
	Tips            *float64 `json:"tips,omitempty"`
	SubmittedBy     *string  `json:"submitted_by,omitempty"`

	ExtractionFailed bool   `json:"extraction_failed"`
	ExtractionError  string `json:"extraction_error,omitempty"`

	Status          Status          `json:"status"`
	ExceptionReason string          `json:"exception_reason,omitempty"`
	ReviewDecision  *ReviewDecision `json:"review_decision,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// NewPendingRecord creates a record in the Pending state
func NewPendingRecord(expenseID, sourceRef, fileName string, submittedAt time.Time) *ExpenseRecord {
	return &ExpenseRecord{
		ExpenseID:      expenseID,
		SourceImageRef: sourceRef,
		FileName:       fileName,
		Status:         StatusPending,
		SubmittedAt:    submittedAt,
	}
}

// HasField reports whether the canonical field is present on the record.
// Unknown field names are never present.
func (r *ExpenseRecord) HasField(name string) bool {
	canonical, ok := CanonicalField(name)
	if !ok {
		return false
	}
	switch canonical {
	case FieldVendor:
		return present(r.Vendor)
	case FieldDate:
		return present(r.Date)
	case FieldAmount:
		return r.Amount != nil
	case FieldCategory:
		return present(r.Category)
	case FieldItems:
		return len(r.Items) > 0
	case FieldSubtotal:
		return r.Subtotal != nil
	case FieldTaxes:
		return r.Taxes != nil
	case FieldTips:
		return r.Tips != nil
	case FieldSubmittedBy:
		return present(r.SubmittedBy)
	}
	return false
}

// IsReviewed reports whether a reviewer decision has been attached
func (r *ExpenseRecord) IsReviewed() bool {
	return r.ReviewDecision != nil
}

// IsApprovedException reports whether the record is an exception a reviewer approved
func (r *ExpenseRecord) IsApprovedException() bool {
	return r.Status == StatusException && r.ReviewDecision != nil && r.ReviewDecision.Decision == DecisionApprove
}

// ApprovalStatus returns the wording used on reports
func (r *ExpenseRecord) ApprovalStatus() string {
	switch {
	case r.Status == StatusAccepted:
		return "Approved"
	case r.ReviewDecision == nil:
		return "Pending Review"
	case r.ReviewDecision.Decision == DecisionApprove:
		return "Approved"
	default:
		return "Rejected"
	}
}

// VendorName returns the vendor or an empty string
func (r *ExpenseRecord) VendorName() string {
	if r.Vendor == nil {
		return ""
	}
	return *r.Vendor
}

// Clone returns a deep copy of the record
func (r *ExpenseRecord) Clone() *ExpenseRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Vendor = cloneString(r.Vendor)
	c.Date = cloneString(r.Date)
	c.Category = cloneString(r.Category)
	c.MerchantAddress = cloneString(r.MerchantAddress)
	c.MerchantPhone = cloneString(r.MerchantPhone)
	c.SubmittedBy = cloneString(r.SubmittedBy)
	c.Amount = cloneFloat(r.Amount)
	c.Subtotal = cloneFloat(r.Subtotal)
	c.Taxes = cloneFloat(r.Taxes)
	c.Tips = cloneFloat(r.Tips)
	if r.Items != nil {
		c.Items = append([]string{}, r.Items...)
	}
	if r.ReviewDecision != nil {
		d := *r.ReviewDecision
		c.ReviewDecision = &d
	}
	return &c
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}
