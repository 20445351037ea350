package models

// Task type names for the asynq mail queue.
const (
	TypeVerificationEmail = "email:verification"
	TypeWelcomeEmail      = "email:welcome"
)

// VerificationEmailPayload is the queued payload for a verification email.
type VerificationEmailPayload struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

// WelcomeEmailPayload is the queued payload for a post-signup welcome email.
type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
