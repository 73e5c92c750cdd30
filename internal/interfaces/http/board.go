package http

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

var (
	// ErrTicketNotFound is returned for unknown ticket ids
	ErrTicketNotFound = errors.New("review ticket not found")
	// ErrTicketClosed is returned when a ticket was already decided or abandoned
	ErrTicketClosed = errors.New("review ticket already closed")
	// ErrInvalidDecision is returned for decisions other than approve or reject
	ErrInvalidDecision = errors.New("decision must be approve or reject")
	// ErrBoardUnavailable is returned once the server behind the board has failed
	ErrBoardUnavailable = errors.New("review board unavailable")
)

// TicketStatus is the lifecycle of a review ticket
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketDecided   TicketStatus = "decided"
	TicketAbandoned TicketStatus = "abandoned"
)

// Ticket is one exception waiting on the board
type Ticket struct {
	ID        string
	Request   port.ReviewRequest
	Status    TicketStatus
	CreatedAt time.Time
	DecidedAt *time.Time
	Response  *port.ReviewResponse

	done chan struct{}
}

// Board implements port.Reviewer as a queue of tickets decided over HTTP.
// RequestDecision blocks until Decide resolves the ticket or ctx is done.
type Board struct {
	mu       sync.Mutex
	tickets  map[string]*Ticket
	notifier port.ReviewNotifier
	linkBase string
	failed   chan struct{}
	failure  error
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

var _ port.Reviewer = (*Board)(nil)

// NewBoard creates an empty board. notifier may be nil.
func NewBoard(notifier port.ReviewNotifier, logger *zap.Logger) *Board {
	return &Board{
		tickets:  make(map[string]*Ticket),
		notifier: notifier,
		failed:   make(chan struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// WithLinkBase sets the URL prefix of ticket links sent to the notifier
func (b *Board) WithLinkBase(base string) *Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkBase = strings.TrimRight(base, "/")
	return b
}

// RequestDecision opens a ticket and waits for its decision
func (b *Board) RequestDecision(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
	if req == nil {
		return nil, errors.New("review request cannot be nil")
	}

	ticket, err := b.open(req)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Review ticket opened",
		zap.String("ticket_id", ticket.ID),
		zap.String("expense_id", req.ExpenseID))

	b.notify(ctx, ticket)

	select {
	case <-ticket.done:
		b.mu.Lock()
		resp := *ticket.Response
		b.mu.Unlock()
		return &resp, nil
	case <-ctx.Done():
		// a decision that raced the cancellation still counts
		if resp := b.abandon(ticket.ID); resp != nil {
			return resp, nil
		}
		return nil, ctx.Err()
	case <-b.failed:
		if resp := b.abandon(ticket.ID); resp != nil {
			return resp, nil
		}
		return nil, b.failureErr()
	}
}

// Fail marks the board unavailable. Waiting and future requests return
// ErrBoardUnavailable; decided tickets are kept.
func (b *Board) Fail(cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return
	}
	b.failure = fmt.Errorf("%w: %w", ErrBoardUnavailable, cause)
	close(b.failed)

	b.logger.Error("Review board failed", zap.Error(cause))
}

func (b *Board) failureErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failure
}

// Decide resolves a pending ticket
func (b *Board) Decide(id string, decision entity.Decision, comment, reviewer string) (*Ticket, error) {
	if !decision.IsValid() {
		return nil, ErrInvalidDecision
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ticket, ok := b.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	if ticket.Status != TicketPending {
		return nil, fmt.Errorf("%w: %s", ErrTicketClosed, ticket.Status)
	}

	at := b.now()
	ticket.Status = TicketDecided
	ticket.DecidedAt = &at
	ticket.Response = &port.ReviewResponse{
		Decision: decision,
		Comment:  comment,
		Reviewer: reviewer,
	}
	close(ticket.done)

	b.logger.Info("Review ticket decided",
		zap.String("ticket_id", id),
		zap.String("expense_id", ticket.Request.ExpenseID),
		zap.String("decision", string(decision)))

	return b.snapshot(ticket), nil
}

// Get returns a copy of one ticket
func (b *Board) Get(id string) (*Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ticket, ok := b.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return b.snapshot(ticket), nil
}

// List returns copies of the tickets with the given status, oldest first.
// An empty status lists every ticket.
func (b *Board) List(status TicketStatus) []*Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Ticket, 0, len(b.tickets))
	for _, t := range b.tickets {
		if status == "" || t.Status == status {
			out = append(out, b.snapshot(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Link is the URL a reviewer follows for ticket id
func (b *Board) Link(id string) string {
	b.mu.Lock()
	base := b.linkBase
	b.mu.Unlock()
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/reviews/%s", base, id)
}

func (b *Board) open(req *port.ReviewRequest) (*Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return nil, b.failure
	}

	ticket := &Ticket{
		ID:        b.newID(),
		Request:   *req,
		Status:    TicketPending,
		CreatedAt: b.now(),
		done:      make(chan struct{}),
	}
	b.tickets[ticket.ID] = ticket
	return ticket, nil
}

// abandon closes a pending ticket. It returns the response instead when
// the ticket was decided first.
func (b *Board) abandon(id string) *port.ReviewResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tickets[id]
	if !ok {
		return nil
	}
	switch t.Status {
	case TicketDecided:
		resp := *t.Response
		return &resp
	case TicketPending:
		t.Status = TicketAbandoned
		b.logger.Warn("Review ticket abandoned", zap.String("ticket_id", id))
	}
	return nil
}

// notify failures are logged; the ticket stays open
func (b *Board) notify(ctx context.Context, ticket *Ticket) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.NotifyPending(ctx, &ticket.Request, b.Link(ticket.ID)); err != nil {
		b.logger.Warn("Failed to notify reviewer",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}

// snapshot must be called with b.mu held
func (b *Board) snapshot(t *Ticket) *Ticket {
	c := *t
	c.done = nil
	if t.Response != nil {
		r := *t.Response
		c.Response = &r
	}
	if t.Request.Amount != nil {
		a := *t.Request.Amount
		c.Request.Amount = &a
	}
	return &c
}

