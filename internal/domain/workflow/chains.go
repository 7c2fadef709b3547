package workflow

// Document chain states. A vendor document moves DEPARTMENT -> IT -> FINANCE
// -> APPROVED, with rejection terminal from any pending stage. The shared
// StateApproved/StateRejected values double as the document terminal states.
const (
	DocStateDepartment State = "DEPARTMENT"
	DocStateIT         State = "IT"
	DocStateFinance    State = "FINANCE"
)

// DocStateForStage maps an approval stage to the document chain state that
// waits on it.
func DocStateForStage(st Stage) State {
	switch st {
	case StageDepartment:
		return DocStateDepartment
	case StageIT:
		return DocStateIT
	case StageFinance:
		return DocStateFinance
	}
	return ""
}

// BuildRequisitionMachine configures the approval state machine for a
// requisition whose department resolved to the given ordered stage chain.
// Approval at the last stage lands on APPROVED; rejection is terminal from any
// pending stage. Send-back is offered only at the head of the chain, and a
// resubmitted requisition re-enters at stage 1.
func BuildRequisitionMachine(chain []Stage, current State) (StateMachine, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}

	b := NewBuilder()
	first := chain[0].PendingState()

	for i, stage := range chain {
		from := stage.PendingState()
		next := StateApproved
		if i < len(chain)-1 {
			next = chain[i+1].PendingState()
		}
		b.Permit(from, TriggerApprove, next)
		b.Permit(from, TriggerReject, StateRejected)
	}

	b.Permit(first, TriggerSendBack, StateSentBack)
	b.Permit(StateSentBack, TriggerResubmit, first)

	return b.Build(current), nil
}

// BuildDocumentMachine configures the approval state machine for a vendor
// document. The chain is fixed; stages are never skipped once entered, and
// there is no send-back for documents.
func BuildDocumentMachine(current State) StateMachine {
	b := NewBuilder()

	b.Permit(DocStateDepartment, TriggerApprove, DocStateIT).
		Permit(DocStateDepartment, TriggerReject, StateRejected).
		Permit(DocStateIT, TriggerApprove, DocStateFinance).
		Permit(DocStateIT, TriggerReject, StateRejected).
		Permit(DocStateFinance, TriggerApprove, StateApproved).
		Permit(DocStateFinance, TriggerReject, StateRejected)

	return b.Build(current)
}
