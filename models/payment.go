package models

// PaymentIntentInfo is returned to the client so it can confirm the intent
// with the card element on its side.
type PaymentIntentInfo struct {
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}
