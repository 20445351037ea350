package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taxly/models"
	"taxly/services/verification"
	"taxly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCooldown is the minimum wait between verification emails.
	DefaultCooldown = 60 * time.Second
	// DefaultPollInterval is the verification poll period.
	DefaultPollInterval = 2 * time.Second

	minPasswordLength = 6
)

// DefaultFlowController is the production FlowService implementation.
type DefaultFlowController struct {
	Store    SnapshotStore
	Accounts AccountService
	Verifier VerificationSender
	Plans    PlanCatalog
	Payments PaymentVerifier
	Notify   Notifier
	Logger   *zap.Logger

	Cooldown     time.Duration
	PollInterval time.Duration
}

// NewFlowController wires the controller with standard timings.
func NewFlowController(store SnapshotStore, accounts AccountService, verifier VerificationSender,
	plans PlanCatalog, payments PaymentVerifier, notify Notifier, logger *zap.Logger) *DefaultFlowController {
	return &DefaultFlowController{
		Store:        store,
		Accounts:     accounts,
		Verifier:     verifier,
		Plans:        plans,
		Payments:     payments,
		Notify:       notify,
		Logger:       logger,
		Cooldown:     DefaultCooldown,
		PollInterval: DefaultPollInterval,
	}
}

func newSnapshot(flowID string) *models.FlowSnapshot {
	now := time.Now()
	return &models.FlowSnapshot{
		FlowID:        flowID,
		CurrentStep:   models.StepEmailInput,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// Initialize loads the persisted snapshot for the flow, creating a fresh one
// when none exists. If a side-channel verification signal is present it takes
// precedence over the snapshot: the signalled email overrides the entered
// one, the flow jumps to personal-info (verified) or email-verification
// (not yet), and the signal is cleared so it is never reapplied.
func (c *DefaultFlowController) Initialize(ctx context.Context, flowID string) (*models.FlowSnapshot, error) {
	if flowID == "" {
		flowID = uuid.New().String()
	}

	snap, err := c.Store.Load(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = newSnapshot(flowID)
	}
	// Loading is request-scoped. A request that died between the flagging
	// save and the clearing save must not wedge the flow until the snapshot
	// expires, so resume always starts unflagged.
	snap.Loading = false

	signal, err := c.Store.LoadSignal(ctx, flowID)
	if err != nil {
		c.Logger.Error("failed to load verify signal", zap.String("flowId", flowID), zap.Error(err))
		signal = nil
	}
	if signal != nil {
		snap.Data.Email = signal.Email
		if signal.Verified {
			snap.EmailVerified = true
			snap.CurrentStep = models.StepPersonalInfo
			if status, err := c.Accounts.VerificationStatus(ctx, signal.Email); err == nil && status.Verified {
				snap.UserID = status.UserID
				snap.AuthToken = status.Token
			}
		} else {
			snap.CurrentStep = models.StepEmailVerification
		}
		if err := c.Store.ClearSignal(ctx, flowID); err != nil {
			c.Logger.Error("failed to clear verify signal", zap.String("flowId", flowID), zap.Error(err))
		}
	}

	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the current snapshot without consuming signals.
func (c *DefaultFlowController) Get(ctx context.Context, flowID string) (*models.FlowSnapshot, error) {
	snap, err := c.Store.Load(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrFlowNotFound
	}
	return snap, nil
}

// SubmitEmail validates the address, checks availability against the account
// store, and advances to email-verification. On conflict or failure the flow
// stays on email-input and the user resubmits manually.
func (c *DefaultFlowController) SubmitEmail(ctx context.Context, flowID, email string) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepEmailInput {
		return nil, &InvalidTransitionError{From: snap.CurrentStep, To: models.StepEmailVerification}
	}
	if snap.Loading {
		return nil, ErrOperationInFlight
	}

	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	snap.Loading = true
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}

	available, err := c.Accounts.IsEmailAvailable(ctx, email)
	snap.Loading = false
	if err != nil {
		if saveErr := c.Store.Save(ctx, snap); saveErr != nil {
			c.Logger.Error("failed to clear loading flag", zap.Error(saveErr))
		}
		return nil, fmt.Errorf("could not check email availability: %w", err)
	}
	if !available {
		if saveErr := c.Store.Save(ctx, snap); saveErr != nil {
			c.Logger.Error("failed to clear loading flag", zap.Error(saveErr))
		}
		return nil, ErrEmailTaken
	}

	snap.Data.Email = email
	if err := transition(snap, models.StepEmailVerification); err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// RequestVerificationEmail sends the verification email, subject to the
// cooldown. Automatic requests fire at most once per flow (tracked by the
// persisted sent flag); manual resends are refused while the cooldown runs,
// with no network call made. A rate-limited response from the sender becomes
// the new source of truth for the local cooldown and still counts as sent.
// The returned duration is the cooldown now in effect.
func (c *DefaultFlowController) RequestVerificationEmail(ctx context.Context, flowID string, manual bool) (time.Duration, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return 0, err
	}
	if snap.CurrentStep != models.StepEmailVerification {
		return 0, ErrNotAwaitingVerification
	}

	now := time.Now()
	remaining := snap.CooldownRemaining(now, c.Cooldown)

	if !manual && (snap.VerificationSent || remaining > 0) {
		return remaining, nil
	}
	if manual && remaining > 0 {
		return remaining, &CooldownActiveError{Remaining: remaining}
	}

	err = c.Verifier.Send(ctx, snap.FlowID, snap.Data.Email)
	var rateLimited *verification.RateLimitedError
	if errors.As(err, &rateLimited) {
		// Adopt the server-reported wait so the client cannot re-request
		// sooner than the server allows.
		snap.LastSentAt = now.Add(rateLimited.Remaining - c.Cooldown).UnixMilli()
		snap.VerificationSent = true
		if saveErr := c.Store.Save(ctx, snap); saveErr != nil {
			return 0, saveErr
		}
		return rateLimited.Remaining, &CooldownActiveError{Remaining: rateLimited.Remaining}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to send verification email: %w", err)
	}

	snap.LastSentAt = now.UnixMilli()
	snap.VerificationSent = true
	if err := c.Store.Save(ctx, snap); err != nil {
		return 0, err
	}
	return c.Cooldown, nil
}

// PollVerificationStatus checks once whether the flow's address is verified
// and advances to personal-info when it is. Poll failures are logged and
// ignored; a result is only applied if the flow is still on the verification
// step for the same address, so stale responses never mutate state.
func (c *DefaultFlowController) PollVerificationStatus(ctx context.Context, flowID string) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepEmailVerification {
		return snap, nil
	}
	email := snap.Data.Email

	status, err := c.Accounts.VerificationStatus(ctx, email)
	if err != nil {
		c.Logger.Debug("verification poll failed", zap.String("email", email), zap.Error(err))
		return snap, nil
	}
	if status == nil || !status.Verified {
		return snap, nil
	}

	// Reload before applying: the flow may have moved on while the check
	// was in flight.
	current, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if current.CurrentStep != models.StepEmailVerification || current.Data.Email != email {
		return current, nil
	}

	current.EmailVerified = true
	current.UserID = status.UserID
	current.AuthToken = status.Token
	if err := transition(current, models.StepPersonalInfo); err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SubmitPersonalInfo validates the personal details client-side rules first
// (no network call on violation), finalizes the account, and advances to
// plan-selection. Backend failures leave the flow on personal-info with the
// server's message passed through.
func (c *DefaultFlowController) SubmitPersonalInfo(ctx context.Context, flowID string, req models.PersonalInfoRequest) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepPersonalInfo {
		return nil, &InvalidTransitionError{From: snap.CurrentStep, To: models.StepPlanSelection}
	}
	if snap.Loading {
		return nil, ErrOperationInFlight
	}

	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" ||
		strings.TrimSpace(req.Role) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	snap.Data.FirstName = req.FirstName
	snap.Data.LastName = req.LastName
	snap.Data.Role = req.Role
	snap.Data.Password = req.Password
	snap.Data.ConfirmPassword = req.ConfirmPassword
	snap.Loading = true
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}

	result, err := c.Accounts.Finalize(ctx, snap.Data.Email, req)
	snap.Loading = false
	if err != nil {
		if saveErr := c.Store.Save(ctx, snap); saveErr != nil {
			c.Logger.Error("failed to clear loading flag", zap.Error(saveErr))
		}
		return nil, err
	}

	snap.UserID = result.UserID
	snap.AuthToken = result.Token
	snap.EmailVerified = true
	if err := transition(snap, models.StepPlanSelection); err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// SelectPlan records the chosen plan and branches. Trial tiers skip payment
// and go straight to success; the branch is persisted atomically with the
// selection so a reload mid-transition resumes at the right step.
func (c *DefaultFlowController) SelectPlan(ctx context.Context, flowID, planID string) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepPlanSelection {
		return nil, &InvalidTransitionError{From: snap.CurrentStep, To: models.StepPayment}
	}

	plan, err := c.Plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("could not load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	snap.SelectedPlan = plan
	next := models.StepPayment
	if plan.IsTrial() {
		next = models.StepSuccess
	}
	if err := transition(snap, next); err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// GoBackToPlans is the single permitted backward transition. The step guard
// matters here: plan-selection is also reachable forward from personal-info,
// and without it this operation would double as a skip past finalization.
func (c *DefaultFlowController) GoBackToPlans(ctx context.Context, flowID string) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepPayment {
		return nil, &InvalidTransitionError{From: snap.CurrentStep, To: models.StepPlanSelection}
	}
	if err := transition(snap, models.StepPlanSelection); err != nil {
		return nil, err
	}
	snap.SelectedPlan = nil
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// HandlePaymentSuccess verifies the payment intent server-side and advances
// to success. Reaching here without account identifiers or a plan signals a
// persistence bug and is surfaced loudly instead of patched over.
func (c *DefaultFlowController) HandlePaymentSuccess(ctx context.Context, flowID, intentID string) (*models.FlowSnapshot, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepPayment {
		return nil, &InvalidTransitionError{From: snap.CurrentStep, To: models.StepSuccess}
	}
	if snap.UserID == "" || snap.AuthToken == "" || snap.SelectedPlan == nil {
		c.Logger.Error("payment reached without account identifiers",
			zap.String("flowId", flowID), zap.String("userId", snap.UserID))
		return nil, ErrInconsistentState
	}

	paid, err := c.Payments.ConfirmPayment(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("could not confirm payment: %w", err)
	}
	if !paid {
		return nil, ErrPaymentNotConfirmed
	}

	if err := transition(snap, models.StepSuccess); err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// FinalizeAndExit fires the success-step side effects and clears all
// persisted registration state. Trial activation and the welcome email are
// best-effort: failures are logged, never surfaced, and never block the
// handoff to the dashboard.
func (c *DefaultFlowController) FinalizeAndExit(ctx context.Context, flowID string) error {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return err
	}
	if snap.CurrentStep != models.StepSuccess {
		return &InvalidTransitionError{From: snap.CurrentStep, To: models.StepSuccess}
	}

	if snap.SelectedPlan != nil && snap.SelectedPlan.IsTrial() {
		if err := c.Accounts.ActivateTrial(ctx, snap.Data.Email, snap.SelectedPlan.Name); err != nil {
			c.Logger.Warn("trial activation failed", zap.String("email", snap.Data.Email), zap.Error(err))
		}
	}

	name := strings.TrimSpace(snap.Data.FirstName + " " + snap.Data.LastName)
	if err := c.Notify.SendWelcome(ctx, snap.Data.Email, name); err != nil {
		c.Logger.Warn("welcome notification failed", zap.String("email", snap.Data.Email), zap.Error(err))
	}

	if err := c.Store.Delete(ctx, flowID); err != nil {
		return fmt.Errorf("failed to clear registration state: %w", err)
	}
	return nil
}
