package workflow

// State represents a requisition status in the approval lifecycle.
type State string

const (
	StatePendingDepartment State = "PENDING_DEPARTMENT_APPROVAL"
	StatePendingIT         State = "PENDING_IT_APPROVAL"
	StatePendingFinance    State = "PENDING_FINANCE_APPROVAL"
	StateSentBack          State = "SENT_BACK"
	StateApproved          State = "APPROVED"
	StateRejected          State = "REJECTED"
)

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Stage is one named step in a department's approval chain.
type Stage string

const (
	StageDepartment Stage = "DEPARTMENT"
	StageIT         Stage = "IT"
	StageFinance    Stage = "FINANCE"
)

// String returns the string representation of the stage.
func (st Stage) String() string {
	return string(st)
}

// IsValid reports whether the stage is one of the three known approval stages.
func (st Stage) IsValid() bool {
	switch st {
	case StageDepartment, StageIT, StageFinance:
		return true
	}
	return false
}

// PendingState returns the requisition status that corresponds to a
// requisition waiting at this stage.
func (st Stage) PendingState() State {
	switch st {
	case StageDepartment:
		return StatePendingDepartment
	case StageIT:
		return StatePendingIT
	case StageFinance:
		return StatePendingFinance
	}
	return ""
}

// StageForState returns the stage a pending requisition status corresponds to.
// The second return value is false for non-pending states.
func StageForState(s State) (Stage, bool) {
	switch s {
	case StatePendingDepartment:
		return StageDepartment, true
	case StatePendingIT:
		return StageIT, true
	case StatePendingFinance:
		return StageFinance, true
	}
	return "", false
}
