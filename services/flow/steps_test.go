package flow

import (
	"testing"

	"taxly/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.FlowStep
		want     bool
	}{
		// Forward, one step at a time.
		{models.StepEmailInput, models.StepEmailVerification, true},
		{models.StepEmailVerification, models.StepPersonalInfo, true},
		{models.StepPersonalInfo, models.StepPlanSelection, true},
		{models.StepPlanSelection, models.StepPayment, true},
		{models.StepPayment, models.StepSuccess, true},

		// Trial short-circuit and the single back edge.
		{models.StepPlanSelection, models.StepSuccess, true},
		{models.StepPayment, models.StepPlanSelection, true},

		// No skipping, no other backward moves, no self loops.
		{models.StepEmailInput, models.StepPersonalInfo, false},
		{models.StepEmailInput, models.StepSuccess, false},
		{models.StepPersonalInfo, models.StepEmailVerification, false},
		{models.StepSuccess, models.StepPayment, false},
		{models.StepPayment, models.StepPayment, false},

		// Unknown step names.
		{"billing", models.StepSuccess, false},
		{models.StepEmailInput, "confirm", false},
	}

	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStepIndex(t *testing.T) {
	if got := StepIndex(models.StepEmailInput); got != 0 {
		t.Errorf("StepIndex(email-input) = %d, want 0", got)
	}
	if got := StepIndex(models.StepSuccess); got != 5 {
		t.Errorf("StepIndex(success) = %d, want 5", got)
	}
	if got := StepIndex("unknown"); got != -1 {
		t.Errorf("StepIndex(unknown) = %d, want -1", got)
	}
}

func TestTransitionUpdatesSnapshot(t *testing.T) {
	snap := &models.FlowSnapshot{FlowID: "f1", CurrentStep: models.StepEmailInput}

	if err := transition(snap, models.StepEmailVerification); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if snap.CurrentStep != models.StepEmailVerification {
		t.Errorf("step = %s, want %s", snap.CurrentStep, models.StepEmailVerification)
	}
	if snap.LastUpdatedAt.IsZero() {
		t.Error("transition must stamp LastUpdatedAt")
	}

	err := transition(snap, models.StepSuccess)
	if err == nil {
		t.Fatal("expected error for a forbidden jump")
	}
	if snap.CurrentStep != models.StepEmailVerification {
		t.Error("failed transition must leave the step untouched")
	}
}
