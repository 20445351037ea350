package models

import "time"

// RegistrationData holds the user-entered fields collected across the wizard.
// Password fields live here only while the flow is in progress; they are
// cleared with the rest of the snapshot on completion.
type RegistrationData struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Role            string `json:"role,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// FlowStep identifies one step of the registration wizard.
type FlowStep string

const (
	StepEmailInput        FlowStep = "email-input"
	StepEmailVerification FlowStep = "email-verification"
	StepPersonalInfo      FlowStep = "personal-info"
	StepPlanSelection     FlowStep = "plan-selection"
	StepPayment           FlowStep = "payment"
	StepSuccess           FlowStep = "success"
)

// FlowSnapshot is the full persisted state of one registration flow. Every
// mutation rewrites the whole record; the persisted copy is the single source
// of truth for resuming after a reload.
type FlowSnapshot struct {
	FlowID        string           `json:"flowId"`
	Data          RegistrationData `json:"data"`
	CurrentStep   FlowStep         `json:"currentStep"`
	EmailVerified bool             `json:"emailVerified"`
	UserID        string           `json:"userId,omitempty"`
	AuthToken     string           `json:"authToken,omitempty"`
	SelectedPlan  *Plan            `json:"selectedPlan,omitempty"`

	// Verification email bookkeeping. LastSentAt is epoch millis so the
	// cooldown can be recomputed after a reload instead of persisted.
	VerificationSent bool  `json:"verificationSent"`
	LastSentAt       int64 `json:"lastSentTime,omitempty"`

	// Loading guards against duplicate submission of the same async step.
	// It is request-scoped: resume resets it, so a crashed request cannot
	// leave the flow permanently flagged.
	Loading bool `json:"loading"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// CooldownRemaining recomputes how long until another verification email may
// be requested, given the configured cooldown window.
func (s *FlowSnapshot) CooldownRemaining(now time.Time, window time.Duration) time.Duration {
	if s.LastSentAt == 0 {
		return 0
	}
	elapsed := now.Sub(time.UnixMilli(s.LastSentAt))
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}

// VerifySignal is the side-channel record written when an email verification
// link is clicked out-of-band. It is consumed exactly once by flow resume and
// takes precedence over the persisted snapshot.
type VerifySignal struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// VerificationStatus is what a verification poll reports for an address.
type VerificationStatus struct {
	Verified bool   `json:"verified"`
	UserID   string `json:"userId,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AuthResult carries the identifiers handed back once an account exists.
type AuthResult struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// PersonalInfoRequest is the payload for the personal-info step.
type PersonalInfoRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Role            string `json:"role" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
