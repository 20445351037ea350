package models

import "time"

// User is the account record behind the signup funnel. A provisional record
// (email only, status "pending") is created when the verification link is
// clicked; personal-info finalization fills in the rest.
type User struct {
	ID           string `json:"id" bson:"id"`
	Email        string `json:"email" bson:"email"`
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	Role         string `json:"role" bson:"role"`
	Password     string `json:"password,omitempty" bson:"-"`
	PasswordHash string `json:"-" bson:"password_hash"`
	TokenHash    string `json:"-" bson:"token_hash"`

	EmailVerified bool   `json:"emailVerified" bson:"emailVerified"`
	Status        string `json:"status" bson:"status"` // "pending" or "active"

	// Subscription fields, set at plan selection / trial activation.
	PlanID         string    `json:"planId,omitempty" bson:"planId,omitempty"`
	PlanName       string    `json:"planName,omitempty" bson:"planName,omitempty"`
	MessageLimit   int       `json:"messageLimit,omitempty" bson:"messageLimit,omitempty"`
	TrialActive    bool      `json:"trialActive" bson:"trialActive"`
	TrialExpiresAt time.Time `json:"trialExpiresAt,omitempty" bson:"trialExpiresAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

const (
	UserStatusPending = "pending"
	UserStatusActive  = "active"
)
