package workflow

// Trigger represents an approver action that can cause a state transition.
type Trigger string

const (
	TriggerApprove  Trigger = "APPROVE"
	TriggerReject   Trigger = "REJECT"
	TriggerSendBack Trigger = "SEND_BACK"
	TriggerResubmit Trigger = "RESUBMIT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
