// Package report renders a run's records into an Excel workbook
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// ErrNoOutputPath is returned when the writer has nowhere to save
var ErrNoOutputPath = errors.New("report output path is empty")

// DefaultOutputPath is used when no report path is configured
const DefaultOutputPath = "Expense_Status_Report.xlsx"

// Sheet names
const (
	SheetDetails    = "Expense Details"
	SheetExceptions = "Exceptions"
	SheetSummary    = "Summary"
)

const (
	moneyFormat    = "$#,##0.00"
	datetimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// column describes one report column. kind selects the cell style.
type column struct {
	title string
	width float64
	kind  cellKind
}

type cellKind int

const (
	kindText cellKind = iota
	kindMoney
	kindDatetime
)

// DetailColumns is the header of the Expense Details sheet
var DetailColumns = []column{
	{"Expense ID", 12, kindText},
	{"Submission Date", 20, kindDatetime},
	{"Submitted By", 16, kindText},
	{"Expense Date", 13, kindText},
	{"Merchant Name", 24, kindText},
	{"Merchant Address", 30, kindText},
	{"Merchant Phone", 16, kindText},
	{"Category", 16, kindText},
	{"Items", 36, kindText},
	{"Subtotal", 12, kindMoney},
	{"Taxes", 10, kindMoney},
	{"Tips", 10, kindMoney},
	{"Total Amount", 13, kindMoney},
	{"Policy Validation", 17, kindText},
	{"Exception Reason", 48, kindText},
	{"Approval Status", 16, kindText},
	{"Approval Date", 20, kindDatetime},
	{"Receipt Image", 40, kindText},
}

// ExceptionColumns is the header of the Exceptions sheet
var ExceptionColumns = []column{
	{"Expense ID", 12, kindText},
	{"Merchant Name", 24, kindText},
	{"Total Amount", 13, kindMoney},
	{"Exception Reason", 48, kindText},
	{"Approval Status", 16, kindText},
	{"Approved By", 16, kindText},
	{"Approval Date", 20, kindDatetime},
	{"Approver Comments", 40, kindText},
}

// ExcelWriter implements port.ReportWriter with excelize
type ExcelWriter struct {
	outputPath string
	logger     *zap.Logger
}

var _ port.ReportWriter = (*ExcelWriter)(nil)

// NewExcelWriter creates a writer saving to outputPath
func NewExcelWriter(outputPath string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{outputPath: outputPath, logger: logger}
}

// OutputPath is where Write saves the workbook
func (w *ExcelWriter) OutputPath() string {
	return w.outputPath
}

// Write renders data into a new workbook, replacing any existing file
func (w *ExcelWriter) Write(ctx context.Context, data *port.ReportData) error {
	if strings.TrimSpace(w.outputPath) == "" {
		return ErrNoOutputPath
	}
	if data == nil {
		data = &port.ReportData{}
	}

	file := excelize.NewFile()
	defer file.Close()

	styles, err := newStyles(file)
	if err != nil {
		return err
	}

	if err := file.SetSheetName("Sheet1", SheetDetails); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetExceptions, SheetSummary} {
		if _, err := file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	var details, exceptions [][]interface{}
	for _, r := range data.Records {
		details = append(details, detailRow(r))
		if r.Status == entity.StatusException {
			exceptions = append(exceptions, exceptionRow(r))
		}
	}

	if err := writeTable(file, SheetDetails, DetailColumns, details, styles); err != nil {
		return err
	}
	if err := writeTable(file, SheetExceptions, ExceptionColumns, exceptions, styles); err != nil {
		return err
	}
	if err := writeSummary(file, data, styles); err != nil {
		return err
	}
	file.SetActiveSheet(0)

	if dir := filepath.Dir(w.outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := file.SaveAs(w.outputPath); err != nil {
		w.logger.Error("Failed to save report",
			zap.String("output_path", w.outputPath),
			zap.Error(err))
		return fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.Info("Report written",
		zap.String("output_path", w.outputPath),
		zap.Int("records", len(details)),
		zap.Int("exceptions", len(exceptions)))

	return nil
}

type styles struct {
	header   int
	money    int
	datetime int
}

func newStyles(file *excelize.File) (*styles, error) {
	header, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	money := moneyFormat
	moneyStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &money})
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	dt := datetimeFormat
	datetimeStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &dt})
	if err != nil {
		return nil, fmt.Errorf("failed to create datetime style: %w", err)
	}

	return &styles{header: header, money: moneyStyle, datetime: datetimeStyle}, nil
}

func writeTable(file *excelize.File, sheet string, columns []column, rows [][]interface{}, st *styles) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.title
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := file.SetCellStyle(sheet, "A1", lastCol+"1", st.header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := file.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	for i, c := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := file.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", sheet, name, err)
		}
		if len(rows) == 0 || c.kind == kindText {
			continue
		}
		style := st.money
		if c.kind == kindDatetime {
			style = st.datetime
		}
		top, _ := excelize.CoordinatesToCellName(i+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(i+1, len(rows)+1)
		if err := file.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("failed to style %s column %s: %w", sheet, name, err)
		}
	}

	return file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(file *excelize.File, data *port.ReportData, st *styles) error {
	s := data.Summary
	rows := [][]interface{}{
		{"Run ID", data.RunID},
		{"Policy Source", string(data.PolicySource)},
		{"Total Receipts", s.Total},
		{"Accepted", s.Accepted},
		{"Exceptions", s.Exceptions},
		{"Approved Exceptions", s.Approved},
		{"Rejected Exceptions", s.Rejected},
		{"Unreviewed Exceptions", s.Unreviewed},
		{"Approved Counted As Accepted", s.CountsApproved},
		{"Reimbursable", s.Reimbursable},
		{"Total Amount", s.TotalAmount},
		{"Reimbursable Amount", s.ReimbursableAmount},
	}

	header := []interface{}{"Metric", "Value"}
	if err := file.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := file.SetCellStyle(SheetSummary, "A1", "B1", st.header); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := file.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	// the two amount rows are last
	n := len(rows) + 1
	if err := file.SetCellStyle(SheetSummary, fmt.Sprintf("B%d", n-1), fmt.Sprintf("B%d", n), st.money); err != nil {
		return fmt.Errorf("failed to style summary amounts: %w", err)
	}
	if err := file.SetColWidth(SheetSummary, "A", "A", 30); err != nil {
		return err
	}
	return file.SetColWidth(SheetSummary, "B", "B", 40)
}

func detailRow(r *entity.ExpenseRecord) []interface{} {
	return []interface{}{
		r.ExpenseID,
		r.SubmittedAt,
		str(r.SubmittedBy),
		str(r.Date),
		str(r.Vendor),
		str(r.MerchantAddress),
		str(r.MerchantPhone),
		str(r.Category),
		strings.Join(r.Items, ", "),
		num(r.Subtotal),
		num(r.Taxes),
		num(r.Tips),
		num(r.Amount),
		string(r.Status),
		r.ExceptionReason,
		r.ApprovalStatus(),
		approvalDate(r),
		r.SourceImageRef,
	}
}

func exceptionRow(r *entity.ExpenseRecord) []interface{} {
	approvedBy, comment := "", ""
	if r.ReviewDecision != nil {
		approvedBy = r.ReviewDecision.Reviewer
		comment = r.ReviewDecision.Comment
	}
	return []interface{}{
		r.ExpenseID,
		str(r.Vendor),
		num(r.Amount),
		r.ExceptionReason,
		r.ApprovalStatus(),
		approvedBy,
		approvalDate(r),
		comment,
	}
}

func approvalDate(r *entity.ExpenseRecord) interface{} {
	if r.ReviewDecision == nil || r.ReviewDecision.Timestamp.IsZero() {
		return ""
	}
	return r.ReviewDecision.Timestamp
}

func str(p *string) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *float64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
