package policy

import "errors"

var (
	// ErrNoPolicySource is reported when no policy path is configured
	ErrNoPolicySource = errors.New("no policy document configured")

	// ErrNoRecognizedStatements is reported when a document holds no known policy statement
	ErrNoRecognizedStatements = errors.New("no recognizable policy statements")
)
