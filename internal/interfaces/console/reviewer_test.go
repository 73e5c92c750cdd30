package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

func request() *port.ReviewRequest {
	amount := 75.0
	return &port.ReviewRequest{
		ExpenseID:      "RCP002",
		Vendor:         "Steakhouse",
		Amount:         &amount,
		Reason:         "exceeds policy limit (75.00 > 50.00)",
		SourceImageRef: "file:///r/b.jpg",
	}
}

func TestReviewer_RequestDecision(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("huh\napprove\nclient dinner\nreject\n\n")
	reviewer := NewReviewerWithIO(in, &out, "Manager", zap.NewNop())

	resp, err := reviewer.RequestDecision(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, entity.DecisionApprove, resp.Decision)
	assert.Equal(t, "client dinner", resp.Comment)
	assert.Equal(t, "Manager", resp.Reviewer)

	text := out.String()
	assert.Contains(t, text, "RCP002")
	assert.Contains(t, text, "Steakhouse")
	assert.Contains(t, text, "75.00")
	assert.Contains(t, text, `unrecognized answer "huh"`)

	// the same reader goroutine serves later requests
	resp, err = reviewer.RequestDecision(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, entity.DecisionReject, resp.Decision)
	assert.Equal(t, "", resp.Comment)
}

func TestReviewer_InputClosed(t *testing.T) {
	reviewer := NewReviewerWithIO(strings.NewReader("maybe\n"), io.Discard, "Manager", zap.NewNop())

	_, err := reviewer.RequestDecision(context.Background(), request())
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestReviewer_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	reviewer := NewReviewerWithIO(pr, io.Discard, "Manager", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := reviewer.RequestDecision(ctx, request())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, SummaryView{
		RunID:        "run-1",
		PolicySource: entity.PolicySourceParsed,
		Summary: entity.RunSummary{
			Total: 3, Accepted: 1, Exceptions: 2, Approved: 1, Rejected: 1,
			Reimbursable: 1, TotalAmount: 100, ReimbursableAmount: 20,
		},
		ReportPath: "out/report.xlsx",
		Err:        errors.New("review stage failed"),
	})

	text := out.String()
	assert.Contains(t, text, "run-1")
	assert.Contains(t, text, "Receipts:      3")
	assert.Contains(t, text, "approved 1, rejected 1, unreviewed 0")
	assert.Contains(t, text, "out/report.xlsx")
	assert.Contains(t, text, "review stage failed")
}
