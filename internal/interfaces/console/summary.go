package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// SummaryView is what PrintSummary renders after a run
type SummaryView struct {
	RunID        string
	PolicySource entity.PolicySource
	Summary      entity.RunSummary
	ReportPath   string
	// Err is the stage error that stopped the run, if any
	Err error
}

// PrintSummary writes the end-of-run counts
func PrintSummary(out io.Writer, v SummaryView) {
	title := color.New(color.Bold)
	title.Fprintf(out, "\nExpense review run %s\n", v.RunID)

	s := v.Summary
	fmt.Fprintf(out, "  Policy:        %s\n", v.PolicySource)
	fmt.Fprintf(out, "  Receipts:      %d\n", s.Total)
	color.New(color.FgGreen).Fprintf(out, "  Accepted:      %d\n", s.Accepted)
	color.New(color.FgYellow).Fprintf(out, "  Exceptions:    %d (approved %d, rejected %d, unreviewed %d)\n",
		s.Exceptions, s.Approved, s.Rejected, s.Unreviewed)
	fmt.Fprintf(out, "  Reimbursable:  %d (%.2f of %.2f)\n", s.Reimbursable, s.ReimbursableAmount, s.TotalAmount)
	if s.CountsApproved {
		fmt.Fprintln(out, "                 approved exceptions included")
	}

	if v.ReportPath != "" {
		fmt.Fprintf(out, "  Report:        %s\n", v.ReportPath)
	}
	if v.Err != nil {
		color.New(color.FgRed).Fprintf(out, "  Stopped early: %v\n", v.Err)
	}
}
