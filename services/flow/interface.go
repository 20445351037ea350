package flow

import (
	"context"
	"time"

	"taxly/models"
)

// SnapshotStore is the scoped persistence capability behind the wizard. The
// controller performs full-snapshot rewrites; the persisted copy is the single
// source of truth for resuming a flow.
type SnapshotStore interface {
	// Save writes the whole snapshot, replacing any previous copy.
	Save(ctx context.Context, snap *models.FlowSnapshot) error
	// Load returns the snapshot for a flow, or nil if none is persisted.
	Load(ctx context.Context, flowID string) (*models.FlowSnapshot, error)
	// Delete erases the snapshot.
	Delete(ctx context.Context, flowID string) error
	// LoadSignal returns the side-channel verification signal, or nil.
	LoadSignal(ctx context.Context, flowID string) (*models.VerifySignal, error)
	// ClearSignal erases the side-channel signal after consumption.
	ClearSignal(ctx context.Context, flowID string) error
}

// AccountService is the slice of the account layer the flow depends on.
type AccountService interface {
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
	VerificationStatus(ctx context.Context, email string) (*models.VerificationStatus, error)
	Finalize(ctx context.Context, email string, req models.PersonalInfoRequest) (*models.AuthResult, error)
	ActivateTrial(ctx context.Context, email, planName string) error
}

// VerificationSender issues verification emails. A send inside the server's
// resend window returns a verification.RateLimitedError.
type VerificationSender interface {
	Send(ctx context.Context, flowID, email string) error
}

// PlanCatalog resolves plan selections.
type PlanCatalog interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// PaymentVerifier confirms that a payment intent actually succeeded.
type PaymentVerifier interface {
	ConfirmPayment(ctx context.Context, intentID string) (bool, error)
}

// Notifier delivers the best-effort welcome notification.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// FlowService sequences a user through the registration wizard.
type FlowService interface {
	// Initialize loads or creates a flow and reconciles the side-channel
	// verification signal, consuming it exactly once.
	Initialize(ctx context.Context, flowID string) (*models.FlowSnapshot, error)
	// Get returns the current snapshot without touching signals.
	Get(ctx context.Context, flowID string) (*models.FlowSnapshot, error)
	// SubmitEmail checks availability and advances to email-verification.
	SubmitEmail(ctx context.Context, flowID, email string) (*models.FlowSnapshot, error)
	// RequestVerificationEmail sends (or resends) the verification email,
	// returning the cooldown now in effect.
	RequestVerificationEmail(ctx context.Context, flowID string, manual bool) (time.Duration, error)
	// PollVerificationStatus checks once whether the address was verified
	// and advances to personal-info when it was.
	PollVerificationStatus(ctx context.Context, flowID string) (*models.FlowSnapshot, error)
	// WatchVerification starts the cancellable poll/cooldown timer pair.
	WatchVerification(ctx context.Context, flowID string) (*Watcher, error)
	// SubmitPersonalInfo validates and finalizes the account, advancing to
	// plan-selection.
	SubmitPersonalInfo(ctx context.Context, flowID string, req models.PersonalInfoRequest) (*models.FlowSnapshot, error)
	// SelectPlan records the plan and branches: trial tiers go straight to
	// success, paid tiers to payment.
	SelectPlan(ctx context.Context, flowID, planID string) (*models.FlowSnapshot, error)
	// GoBackToPlans is the single permitted back edge, payment to plan-selection.
	GoBackToPlans(ctx context.Context, flowID string) (*models.FlowSnapshot, error)
	// HandlePaymentSuccess verifies the intent and advances to success.
	HandlePaymentSuccess(ctx context.Context, flowID, intentID string) (*models.FlowSnapshot, error)
	// FinalizeAndExit fires the exactly-once side effects and clears state.
	FinalizeAndExit(ctx context.Context, flowID string) error
}
