package flow

import (
	"errors"
	"fmt"
	"time"

	"taxly/models"
)

var (
	// ErrFlowNotFound signals that no snapshot exists for the given flow ID.
	ErrFlowNotFound = errors.New("registration flow not found")
	// ErrInvalidEmail rejects malformed addresses before any network call.
	ErrInvalidEmail = errors.New("please enter a valid email address")
	// ErrEmailTaken signals the address already belongs to an active account.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrOperationInFlight rejects duplicate submission of an async step.
	ErrOperationInFlight = errors.New("a request for this step is already in progress")
	// ErrMissingFields rejects personal info with empty required fields.
	ErrMissingFields = errors.New("all fields are required")
	// ErrPasswordTooShort rejects passwords under the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrPasswordMismatch rejects non-matching password confirmation.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPlanNotFound signals an unknown plan ID at selection.
	ErrPlanNotFound = errors.New("selected plan does not exist")
	// ErrPaymentNotConfirmed signals the payment intent has not succeeded.
	ErrPaymentNotConfirmed = errors.New("payment has not completed")
	// ErrNotAwaitingVerification guards verification operations off-step.
	ErrNotAwaitingVerification = errors.New("flow is not awaiting email verification")
	// ErrInconsistentState signals required identifiers went missing where
	// they are unreachable-missing by construction. There is no in-flow
	// repair; the user is asked to restart or contact support.
	ErrInconsistentState = errors.New("registration state is inconsistent; please restart or contact support")
)

// InvalidTransitionError reports a step change the wizard order forbids.
type InvalidTransitionError struct {
	From models.FlowStep
	To   models.FlowStep
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// CooldownActiveError reports the remaining wait before another verification
// email may be requested. It is informational rather than a failure.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting another email", int(e.Remaining.Round(time.Second).Seconds()))
}
