package models

import "testing"

func TestCanTransitionPO(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{POStatusDraft, POStatusSent, true},
		{POStatusSent, POStatusAcknowledged, true},
		{POStatusAcknowledged, POStatusCompleted, true},
		{POStatusDraft, POStatusAcknowledged, false},
		{POStatusDraft, POStatusCompleted, false},
		{POStatusSent, POStatusDraft, false},
		{POStatusCompleted, POStatusDraft, false},
		{POStatusDraft, POStatusCancelled, true},
		{POStatusSent, POStatusCancelled, true},
		{POStatusAcknowledged, POStatusCancelled, true},
		{POStatusCompleted, POStatusCancelled, false},
		{POStatusCancelled, POStatusCancelled, false},
		{POStatusCancelled, POStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := CanTransitionPO(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionPO(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
