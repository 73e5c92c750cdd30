// Package console implements the interactive terminal reviewer and the
// end-of-run summary.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// ErrInputClosed is returned once the input stream has ended
var ErrInputClosed = errors.New("reviewer input closed")

type line struct {
	text string
	err  error
}

// Reviewer asks for decisions on a terminal. Input is read by a single
// goroutine so a pending prompt can be abandoned when ctx is cancelled.
type Reviewer struct {
	in     io.Reader
	out    io.Writer
	name   string
	lines  chan line
	start  sync.Once
	logger *zap.Logger

	header *color.Color
	prompt *color.Color
	ok     *color.Color
	bad    *color.Color
}

var _ port.Reviewer = (*Reviewer)(nil)

// NewReviewer returns a reviewer on stdin/stdout
func NewReviewer(name string, logger *zap.Logger) *Reviewer {
	return NewReviewerWithIO(os.Stdin, os.Stdout, name, logger)
}

// NewReviewerWithIO lets callers override the input/output streams
func NewReviewerWithIO(in io.Reader, out io.Writer, name string, logger *zap.Logger) *Reviewer {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Reviewer{
		in:     in,
		out:    out,
		name:   name,
		lines:  make(chan line),
		logger: logger,
		header: color.New(color.FgYellow, color.Bold),
		prompt: color.New(color.FgCyan),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
	}
}

// RequestDecision prints the exception and blocks until a valid decision
// is typed, the input ends, or ctx is done.
func (r *Reviewer) RequestDecision(ctx context.Context, req *port.ReviewRequest) (*port.ReviewResponse, error) {
	r.start.Do(func() { go r.readLines() })

	r.printRequest(req)

	var decision entity.Decision
	for {
		r.prompt.Fprint(r.out, "Decision [approve/reject]: ")
		text, err := r.next(ctx)
		if err != nil {
			return nil, err
		}
		d, ok := entity.ParseDecision(text)
		if ok {
			decision = d
			break
		}
		r.bad.Fprintf(r.out, "  unrecognized answer %q\n", text)
	}

	r.prompt.Fprint(r.out, "Comment (optional): ")
	comment, err := r.next(ctx)
	if err != nil {
		return nil, err
	}

	if decision == entity.DecisionApprove {
		r.ok.Fprintf(r.out, "  ✓ %s approved\n", req.ExpenseID)
	} else {
		r.bad.Fprintf(r.out, "  ✗ %s rejected\n", req.ExpenseID)
	}

	r.logger.Debug("Console decision captured",
		zap.String("expense_id", req.ExpenseID),
		zap.String("decision", string(decision)))

	return &port.ReviewResponse{
		Decision: decision,
		Comment:  strings.TrimSpace(comment),
		Reviewer: r.name,
	}, nil
}

func (r *Reviewer) printRequest(req *port.ReviewRequest) {
	r.header.Fprintf(r.out, "\n== Exception review: %s ==\n", req.ExpenseID)
	vendor := req.Vendor
	if vendor == "" {
		vendor = "(not extracted)"
	}
	fmt.Fprintf(r.out, "  Vendor:  %s\n", vendor)
	if req.Amount != nil {
		fmt.Fprintf(r.out, "  Amount:  %.2f\n", *req.Amount)
	} else {
		fmt.Fprintf(r.out, "  Amount:  (not extracted)\n")
	}
	fmt.Fprintf(r.out, "  Reason:  %s\n", req.Reason)
	if req.SourceImageRef != "" {
		fmt.Fprintf(r.out, "  Receipt: %s\n", req.SourceImageRef)
	}
}

func (r *Reviewer) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		fmt.Fprintln(r.out)
		return "", ctx.Err()
	case l, ok := <-r.lines:
		if !ok {
			return "", ErrInputClosed
		}
		if l.err != nil {
			return "", l.err
		}
		return l.text, nil
	}
}

// readLines feeds r.lines until the input ends, then closes it
func (r *Reviewer) readLines() {
	defer close(r.lines)
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		r.lines <- line{text: strings.TrimSpace(scanner.Text())}
	}
	if err := scanner.Err(); err != nil {
		r.lines <- line{err: fmt.Errorf("%w: %w", ErrInputClosed, err)}
	}
}
