package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

func sampleData() *port.ReportData {
	submitted := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	decided := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	accepted := entity.NewPendingRecord("RCP001", "file:///r/a.jpg", "a.jpg", submitted)
	accepted.Vendor = entity.StringPtr("Cafe")
	accepted.Amount = entity.FloatPtr(20)
	accepted.Items = []string{"Soup", "Tea"}
	accepted.Status = entity.StatusAccepted

	approved := entity.NewPendingRecord("RCP002", "file:///r/b.jpg", "b.jpg", submitted)
	approved.Vendor = entity.StringPtr("Steakhouse")
	approved.Amount = entity.FloatPtr(75)
	approved.Status = entity.StatusException
	approved.ExceptionReason = "exceeds policy limit (75.00 > 50.00)"
	approved.ReviewDecision = &entity.ReviewDecision{
		Decision:  entity.DecisionApprove,
		Comment:   "client dinner",
		Reviewer:  "Manager",
		Timestamp: decided,
	}

	failed := entity.NewPendingRecord("RCP003", "file:///r/c.jpg", "c.jpg", submitted)
	failed.ExtractionFailed = true
	failed.Status = entity.StatusException
	failed.ExceptionReason = "receipt extraction failed | missing field: vendor"

	records := []*entity.ExpenseRecord{accepted, approved, failed}
	return &port.ReportData{
		RunID:        "run-1",
		PolicySource: entity.PolicySourceParsed,
		Records:      records,
		Summary:      entity.Summarize(records, false),
	}
}

func TestExcelWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "report.xlsx")
	writer := NewExcelWriter(path, zap.NewNop())

	require.NoError(t, writer.Write(context.Background(), sampleData()))
	require.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDetails, SheetExceptions, SheetSummary}, f.GetSheetList())

	details, err := f.GetRows(SheetDetails)
	require.NoError(t, err)
	require.Len(t, details, 4, "header plus three records")
	assert.Equal(t, "Expense ID", details[0][0])
	assert.Equal(t, "Receipt Image", details[0][len(details[0])-1])
	assert.Len(t, details[0], len(DetailColumns))
	assert.Equal(t, "RCP001", details[1][0])
	assert.Equal(t, "Cafe", details[1][4])
	assert.Equal(t, "Soup, Tea", details[1][8])
	assert.Equal(t, "Accepted", details[1][13])
	assert.Equal(t, "Approved", details[1][15])

	raw, err := f.GetCellValue(SheetDetails, "M3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "75", raw)

	exceptions, err := f.GetRows(SheetExceptions)
	require.NoError(t, err)
	require.Len(t, exceptions, 3)
	assert.Equal(t, "Approver Comments", exceptions[0][7])
	assert.Equal(t, "RCP002", exceptions[1][0])
	assert.Equal(t, "Approved", exceptions[1][4])
	assert.Equal(t, "Manager", exceptions[1][5])
	assert.Equal(t, "client dinner", exceptions[1][7])
	assert.Equal(t, "RCP003", exceptions[2][0])
	assert.Equal(t, "Pending Review", exceptions[2][4])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "run-1"}, summary[1])
	assert.Equal(t, []string{"Accepted", "1"}, summary[4])
}

func TestExcelWriter_EmptyRunStillHasHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	writer := NewExcelWriter(path, zap.NewNop())

	require.NoError(t, writer.Write(context.Background(), &port.ReportData{RunID: "run-2"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{SheetDetails, SheetExceptions} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 1, sheet)
		assert.Equal(t, "Expense ID", rows[0][0])
	}
}

func TestExcelWriter_NoOutputPath(t *testing.T) {
	writer := NewExcelWriter("  ", zap.NewNop())
	assert.ErrorIs(t, writer.Write(context.Background(), sampleData()), ErrNoOutputPath)
}
