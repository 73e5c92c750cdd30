package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// mockReviewer is a hand-rolled Reviewer
type mockReviewer struct {
	requestDecisionFunc func(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error)
	requests            []*port.ReviewRequest
}

func (m *mockReviewer) RequestDecision(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
	m.requests = append(m.requests, req)
	return m.requestDecisionFunc(ctx, req)
}

func answering(decision entity.Decision, comment string) *mockReviewer {
	return &mockReviewer{
		requestDecisionFunc: func(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
			return &port.ReviewResponse{Decision: decision, Comment: comment}, nil
		},
	}
}

func exceptionRecord() *entity.ExpenseRecord {
	return &entity.ExpenseRecord{
		ExpenseID:       "RCP002",
		SourceImageRef:  "file:///r/b.jpg",
		Vendor:          entity.StringPtr("Steakhouse"),
		Amount:          entity.FloatPtr(75),
		Status:          entity.StatusException,
		ExceptionReason: "exceeds policy limit (75.00 > 50.00)",
	}
}

func TestRouter_ApproveKeepsException(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	reviewer := answering(entity.DecisionApprove, "ok, client dinner")
	router := NewRouter(reviewer, "Manager", zap.NewNop()).WithClock(func() time.Time { return at })

	input := exceptionRecord()
	got, err := router.Review(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusException, got.Status)
	require.NotNil(t, got.ReviewDecision)
	assert.Equal(t, entity.DecisionApprove, got.ReviewDecision.Decision)
	assert.Equal(t, "ok, client dinner", got.ReviewDecision.Comment)
	assert.Equal(t, "Manager", got.ReviewDecision.Reviewer)
	assert.Equal(t, at, got.ReviewDecision.Timestamp)
	assert.Nil(t, input.ReviewDecision, "input must not be mutated")

	require.Len(t, reviewer.requests, 1)
	assert.Equal(t, "Steakhouse", reviewer.requests[0].Vendor)
	assert.Equal(t, input.ExceptionReason, reviewer.requests[0].Reason)
}

func TestRouter_RejectWithEmptyComment(t *testing.T) {
	router := NewRouter(answering(entity.DecisionReject, ""), "Manager", zap.NewNop())

	got, err := router.Review(context.Background(), exceptionRecord())
	require.NoError(t, err)

	assert.Equal(t, entity.StatusException, got.Status)
	assert.Equal(t, entity.DecisionReject, got.ReviewDecision.Decision)
	assert.Equal(t, "", got.ReviewDecision.Comment)
}

func TestRouter_RejectsNonExceptions(t *testing.T) {
	router := NewRouter(answering(entity.DecisionApprove, ""), "Manager", zap.NewNop())

	reviewed := exceptionRecord()
	reviewed.ReviewDecision = &entity.ReviewDecision{Decision: entity.DecisionApprove}

	tests := []struct {
		name   string
		record *entity.ExpenseRecord
	}{
		{"nil", nil},
		{"accepted", &entity.ExpenseRecord{Status: entity.StatusAccepted}},
		{"pending", &entity.ExpenseRecord{Status: entity.StatusPending}},
		{"already reviewed", reviewed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.Review(context.Background(), tt.record)
			assert.ErrorIs(t, err, ErrNotReviewable)
		})
	}
}

func TestRouter_ReviewerFailures(t *testing.T) {
	tests := []struct {
		name     string
		reviewer port.Reviewer
		expected error
	}{
		{
			name: "channel closed",
			reviewer: &mockReviewer{requestDecisionFunc: func(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
				return nil, errors.New("stdin closed")
			}},
			expected: ErrReviewerUnavailable,
		},
		{
			name:     "invalid decision",
			reviewer: answering("Maybe", ""),
			expected: ErrInvalidDecision,
		},
		{
			name:     "no reviewer",
			reviewer: nil,
			expected: ErrReviewerUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(tt.reviewer, "Manager", zap.NewNop())
			_, err := router.Review(context.Background(), exceptionRecord())
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestRouter_CancellationInterruptsWait(t *testing.T) {
	reviewer := &mockReviewer{
		requestDecisionFunc: func(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	router := NewRouter(reviewer, "Manager", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := router.Review(ctx, exceptionRecord())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrReviewerUnavailable)
}
