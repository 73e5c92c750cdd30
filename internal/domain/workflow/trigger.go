package workflow

// Trigger is a pipeline event that moves a record to another state
type Trigger string

const (
	TriggerAccept  Trigger = "ACCEPT"
	TriggerFlag    Trigger = "FLAG"
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
