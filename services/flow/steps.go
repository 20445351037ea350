package flow

import (
	"time"

	"taxly/models"
)

// stepOrder defines the strict linear order of the wizard.
var stepOrder = map[models.FlowStep]int{
	models.StepEmailInput:        0,
	models.StepEmailVerification: 1,
	models.StepPersonalInfo:      2,
	models.StepPlanSelection:     3,
	models.StepPayment:           4,
	models.StepSuccess:           5,
}

// StepIndex returns the position of a step in the wizard order, or -1 for an
// unknown step name.
func StepIndex(s models.FlowStep) int {
	idx, ok := stepOrder[s]
	if !ok {
		return -1
	}
	return idx
}

// canTransition reports whether the wizard permits moving between two steps.
// The flow is strictly forward one step at a time, with two exceptions: the
// trial short-circuit (plan-selection straight to success) and the single
// back edge from payment to plan-selection.
func canTransition(from, to models.FlowStep) bool {
	fi, ti := StepIndex(from), StepIndex(to)
	if fi < 0 || ti < 0 {
		return false
	}
	if from == models.StepPlanSelection && to == models.StepSuccess {
		return true
	}
	if from == models.StepPayment && to == models.StepPlanSelection {
		return true
	}
	return ti == fi+1
}

// transition applies a validated step change to the snapshot.
func transition(snap *models.FlowSnapshot, to models.FlowStep) error {
	if !canTransition(snap.CurrentStep, to) {
		return &InvalidTransitionError{From: snap.CurrentStep, To: to}
	}
	snap.CurrentStep = to
	snap.LastUpdatedAt = time.Now()
	return nil
}
