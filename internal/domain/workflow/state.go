package workflow

// State is a stage in an expense record's lifecycle
type State string

const (
	StatePending   State = "PENDING"
	StateAccepted  State = "ACCEPTED"
	StateException State = "EXCEPTION"
	StateReviewed  State = "REVIEWED"
)

var validStates = map[State]bool{
	StatePending:   true,
	StateAccepted:  true,
	StateException: true,
	StateReviewed:  true,
}

var terminalStates = map[State]bool{
	StateAccepted: true,
	StateReviewed: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
