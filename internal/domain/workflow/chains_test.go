package workflow

import (
	"errors"
	"testing"
)

func fire(t *testing.T, m StateMachine, trigger Trigger, want State) {
	t.Helper()
	if err := m.Fire(trigger); err != nil {
		t.Fatalf("Fire(%s) from %s failed: %v", trigger, m.State(), err)
	}
	if m.State() != want {
		t.Fatalf("State after %s = %v, want %v", trigger, m.State(), want)
	}
}

func TestRequisitionMachine_ThreeStageChain(t *testing.T) {
	chain := []Stage{StageDepartment, StageIT, StageFinance}

	m, err := BuildRequisitionMachine(chain, StatePendingDepartment)
	if err != nil {
		t.Fatalf("BuildRequisitionMachine() failed: %v", err)
	}

	fire(t, m, TriggerApprove, StatePendingIT)
	fire(t, m, TriggerApprove, StatePendingFinance)
	fire(t, m, TriggerApprove, StateApproved)

	if err := m.Fire(TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() after APPROVED error = %v, want ErrInvalidTransition", err)
	}
}

func TestRequisitionMachine_TwoStageFallbackChain(t *testing.T) {
	chain := []Stage{StageIT, StageFinance}

	m, err := BuildRequisitionMachine(chain, StatePendingIT)
	if err != nil {
		t.Fatalf("BuildRequisitionMachine() failed: %v", err)
	}

	fire(t, m, TriggerApprove, StatePendingFinance)
	fire(t, m, TriggerApprove, StateApproved)
}

func TestRequisitionMachine_RejectIsTerminalAtEveryStage(t *testing.T) {
	chain := []Stage{StageDepartment, StageIT, StageFinance}

	for _, start := range []State{StatePendingDepartment, StatePendingIT, StatePendingFinance} {
		t.Run(string(start), func(t *testing.T) {
			m, err := BuildRequisitionMachine(chain, start)
			if err != nil {
				t.Fatalf("BuildRequisitionMachine() failed: %v", err)
			}

			fire(t, m, TriggerReject, StateRejected)

			for _, trigger := range []Trigger{TriggerApprove, TriggerReject, TriggerSendBack, TriggerResubmit} {
				if err := m.Fire(trigger); !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Fire(%s) after REJECTED error = %v, want ErrInvalidTransition", trigger, err)
				}
			}
		})
	}
}

func TestRequisitionMachine_SendBackOnlyAtChainHead(t *testing.T) {
	chain := []Stage{StageDepartment, StageIT, StageFinance}

	m, err := BuildRequisitionMachine(chain, StatePendingDepartment)
	if err != nil {
		t.Fatalf("BuildRequisitionMachine() failed: %v", err)
	}

	fire(t, m, TriggerSendBack, StateSentBack)
	fire(t, m, TriggerResubmit, StatePendingDepartment)
	fire(t, m, TriggerApprove, StatePendingIT)

	if err := m.Fire(TriggerSendBack); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(SEND_BACK) at IT stage error = %v, want ErrInvalidTransition", err)
	}
}

func TestRequisitionMachine_ResubmitRestartsAtFirstConfiguredStage(t *testing.T) {
	chain := []Stage{StageIT, StageFinance}

	m, err := BuildRequisitionMachine(chain, StatePendingIT)
	if err != nil {
		t.Fatalf("BuildRequisitionMachine() failed: %v", err)
	}

	fire(t, m, TriggerSendBack, StateSentBack)
	fire(t, m, TriggerResubmit, StatePendingIT)
}

func TestRequisitionMachine_EmptyChain(t *testing.T) {
	if _, err := BuildRequisitionMachine(nil, StatePendingIT); !errors.Is(err, ErrEmptyChain) {
		t.Errorf("BuildRequisitionMachine(nil) error = %v, want ErrEmptyChain", err)
	}
}

func TestDocumentMachine_ForwardOnlyProgression(t *testing.T) {
	m := BuildDocumentMachine(DocStateDepartment)

	fire(t, m, TriggerApprove, DocStateIT)
	fire(t, m, TriggerApprove, DocStateFinance)
	fire(t, m, TriggerApprove, StateApproved)

	if err := m.Fire(TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() after document APPROVED error = %v, want ErrInvalidTransition", err)
	}
}

func TestDocumentMachine_RejectFromAnyPendingStage(t *testing.T) {
	for _, start := range []State{DocStateDepartment, DocStateIT, DocStateFinance} {
		t.Run(string(start), func(t *testing.T) {
			m := BuildDocumentMachine(start)
			fire(t, m, TriggerReject, StateRejected)

			if err := m.Fire(TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(APPROVE) after rejection error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestDocumentMachine_NoSendBack(t *testing.T) {
	for _, start := range []State{DocStateDepartment, DocStateIT, DocStateFinance} {
		m := BuildDocumentMachine(start)
		if m.CanFire(TriggerSendBack) {
			t.Errorf("CanFire(SEND_BACK) at %s = true, documents have no send-back", start)
		}
	}
}
