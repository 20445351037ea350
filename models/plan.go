package models

import "strings"

// Plan is a subscription tier shown during plan selection. The flow treats it
// as an opaque value except for the trial check, which decides whether the
// payment step can be skipped.
type Plan struct {
	ID           string   `json:"id" bson:"id"`
	Name         string   `json:"name" bson:"name"`
	Price        int64    `json:"price" bson:"price"` // minor units (cents)
	Currency     string   `json:"currency" bson:"currency"`
	MessageLimit int      `json:"messageLimit" bson:"messageLimit"`
	DurationDays int      `json:"durationDays" bson:"durationDays"`
	Features     []string `json:"features" bson:"features"`
}

// IsTrial reports whether this plan is a trial tier requiring no payment.
func (p Plan) IsTrial() bool {
	return strings.Contains(strings.ToLower(p.Name), "trial") ||
		strings.Contains(strings.ToLower(p.ID), "trial")
}
