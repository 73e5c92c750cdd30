package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	board   *Board
	version string
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(board *Board, version string, logger *zap.Logger) *Handlers {
	return &Handlers{
		board:   board,
		version: version,
		logger:  logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Pending   int    `json:"pending_reviews"`
}

// TicketResponse represents a review ticket in API responses
type TicketResponse struct {
	ID             string   `json:"id"`
	ExpenseID      string   `json:"expense_id"`
	Vendor         string   `json:"vendor,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	Reason         string   `json:"reason"`
	SourceImageRef string   `json:"source_image_ref,omitempty"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
	DecidedAt      *string  `json:"decided_at,omitempty"`
	Decision       string   `json:"decision,omitempty"`
	Comment        string   `json:"comment,omitempty"`
	Reviewer       string   `json:"reviewer,omitempty"`
}

// DecisionRequest is the body of POST /api/v1/reviews/:id/decision
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
	Reviewer string `json:"reviewer"`
}

// ListReviewsRequest represents query parameters for listing tickets
type ListReviewsRequest struct {
	Status string `form:"status"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.version,
			Pending:   len(h.board.List(TicketPending)),
		},
	})
}

// ListReviews handles GET /api/v1/reviews
func (h *Handlers) ListReviews(c *gin.Context) {
	var req ListReviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	status := TicketStatus(req.Status)
	switch status {
	case "":
		status = TicketPending
	case "all":
		status = ""
	case TicketPending, TicketDecided, TicketAbandoned:
	default:
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status filter"})
		return
	}

	tickets := h.board.List(status)
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// GetReview handles GET /api/v1/reviews/:id
func (h *Handlers) GetReview(c *gin.Context) {
	ticket, err := h.board.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "review not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toTicketResponse(ticket)})
}

// Decide handles POST /api/v1/reviews/:id/decision
func (h *Handlers) Decide(c *gin.Context) {
	id := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid decision body", zap.String("ticket_id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "decision is required"})
		return
	}

	decision, ok := entity.ParseDecision(req.Decision)
	if !ok {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: ErrInvalidDecision.Error()})
		return
	}

	ticket, err := h.board.Decide(id, decision, req.Comment, req.Reviewer)
	switch {
	case errors.Is(err, ErrTicketNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "review not found"})
		return
	case errors.Is(err, ErrTicketClosed):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("Failed to record decision", zap.String("ticket_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to record decision"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toTicketResponse(ticket)})
}

// toTicketResponse converts a ticket to its API form
func toTicketResponse(t *Ticket) TicketResponse {
	resp := TicketResponse{
		ID:             t.ID,
		ExpenseID:      t.Request.ExpenseID,
		Vendor:         t.Request.Vendor,
		Amount:         t.Request.Amount,
		Reason:         t.Request.Reason,
		SourceImageRef: t.Request.SourceImageRef,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}

	if t.DecidedAt != nil {
		decidedAt := t.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	if t.Response != nil {
		resp.Decision = string(t.Response.Decision)
		resp.Comment = t.Response.Comment
		resp.Reviewer = t.Response.Reviewer
	}

	return resp
}
