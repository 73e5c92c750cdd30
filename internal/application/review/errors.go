package review

import "errors"

var (
	// ErrNotReviewable is returned for records that are not unreviewed exceptions
	ErrNotReviewable = errors.New("record is not an unreviewed exception")

	// ErrInvalidDecision is returned when a reviewer answers something other than Approve or Reject
	ErrInvalidDecision = errors.New("invalid review decision")

	// ErrReviewerUnavailable wraps any failure of the human-review channel
	ErrReviewerUnavailable = errors.New("reviewer unavailable")
)
