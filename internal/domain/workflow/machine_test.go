package workflow

import (
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingDepartment, false},
		{StatePendingIT, false},
		{StatePendingFinance, false},
		{StateSentBack, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStage_PendingState(t *testing.T) {
	tests := []struct {
		stage Stage
		want  State
	}{
		{StageDepartment, StatePendingDepartment},
		{StageIT, StatePendingIT},
		{StageFinance, StatePendingFinance},
		{Stage("BOGUS"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.PendingState(); got != tt.want {
				t.Errorf("Stage.PendingState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageForState(t *testing.T) {
	tests := []struct {
		state  State
		stage  Stage
		wantOK bool
	}{
		{StatePendingDepartment, StageDepartment, true},
		{StatePendingIT, StageIT, true},
		{StatePendingFinance, StageFinance, true},
		{StateApproved, "", false},
		{StateSentBack, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			stage, ok := StageForState(tt.state)
			if ok != tt.wantOK || stage != tt.stage {
				t.Errorf("StageForState(%s) = (%v, %v), want (%v, %v)", tt.state, stage, ok, tt.stage, tt.wantOK)
			}
		})
	}
}

func TestBuilder_PermitAndFire(t *testing.T) {
	b := NewBuilder()
	b.Permit(StatePendingIT, TriggerApprove, StatePendingFinance)

	machine := b.Build(StatePendingIT)

	if !machine.CanFire(TriggerApprove) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StatePendingFinance {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StatePendingFinance)
	}
}

func TestBuilder_BuildPanicsOnEmptyInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on empty initial state")
		}
	}()

	NewBuilder().Build(State(""))
}

func TestMachine_FireUnpermittedTrigger(t *testing.T) {
	b := NewBuilder()
	b.Permit(StatePendingIT, TriggerApprove, StatePendingFinance)

	machine := b.Build(StatePendingIT)

	err := machine.Fire(TriggerSendBack)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}

	if machine.State() != StatePendingIT {
		t.Errorf("State must not change on failed Fire(), got %v", machine.State())
	}
}

func TestMachine_TerminalStateHasNoTriggers(t *testing.T) {
	b := NewBuilder()
	b.Permit(StatePendingFinance, TriggerApprove, StateApproved)

	machine := b.Build(StateApproved)

	if got := machine.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() in terminal state = %v, want none", got)
	}

	if err := machine.Fire(TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() from terminal state error = %v, want ErrInvalidTransition", err)
	}
}
