package entity

// RunSummary holds the totals printed after a run and written to the report.
//
// Accepted counts only records that passed every gate. Approved exceptions
// stay exceptions; they are added to Reimbursable only when the run is
// configured to count them.
type RunSummary struct {
	Total              int     `json:"total"`
	Accepted           int     `json:"accepted"`
	Exceptions         int     `json:"exceptions"`
	Approved           int     `json:"approved_exceptions"`
	Rejected           int     `json:"rejected_exceptions"`
	Unreviewed         int     `json:"unreviewed_exceptions"`
	Reimbursable       int     `json:"reimbursable"`
	TotalAmount        float64 `json:"total_amount"`
	ReimbursableAmount float64 `json:"reimbursable_amount"`
	CountsApproved     bool    `json:"counts_approved_exceptions"`
}

// Summarize computes a RunSummary over records
func Summarize(records []*ExpenseRecord, countApprovedAsAccepted bool) RunSummary {
	s := RunSummary{CountsApproved: countApprovedAsAccepted}

	for _, r := range records {
		s.Total++
		amount := 0.0
		if r.Amount != nil {
			amount = *r.Amount
		}
		s.TotalAmount += amount

		reimbursable := false
		switch r.Status {
		case StatusAccepted:
			s.Accepted++
			reimbursable = true
		case StatusException:
			s.Exceptions++
			switch {
			case r.ReviewDecision == nil:
				s.Unreviewed++
			case r.ReviewDecision.Decision == DecisionApprove:
				s.Approved++
				reimbursable = countApprovedAsAccepted
			default:
				s.Rejected++
			}
		}

		if reimbursable {
			s.Reimbursable++
			s.ReimbursableAmount += amount
		}
	}

	return s
}
