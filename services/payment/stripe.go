package payment

import (
	"context"
	"fmt"

	"taxly/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Service creates payment intents for paid plans and confirms their outcome.
// The flow only needs a boolean success plus the opaque intent reference.
type Service interface {
	CreateIntent(ctx context.Context, userID string, plan models.Plan) (*models.PaymentIntentInfo, error)
	ConfirmPayment(ctx context.Context, intentID string) (bool, error)
}

// StripeService is the production implementation on Stripe payment intents.
type StripeService struct {
	Logger *zap.Logger
}

// NewStripeService constructs the Stripe-backed payment service. The global
// stripe.Key must already be set from configuration.
func NewStripeService(logger *zap.Logger) *StripeService {
	return &StripeService{Logger: logger}
}

// CreateIntent creates a payment intent for the plan's price and returns the
// client secret the browser confirms with its card element.
func (s *StripeService) CreateIntent(ctx context.Context, userID string, plan models.Plan) (*models.PaymentIntentInfo, error) {
	if plan.Price <= 0 {
		return nil, fmt.Errorf("plan %s has no payable amount", plan.ID)
	}
	currency := plan.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(plan.Price),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("planId", plan.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("payment intent created",
		zap.String("intentId", pi.ID),
		zap.String("userId", userID),
		zap.String("planId", plan.ID))

	return &models.PaymentIntentInfo{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       plan.Price,
		Currency:     currency,
	}, nil
}

// ConfirmPayment checks the intent's status server-side. Only a succeeded
// intent counts as paid.
func (s *StripeService) ConfirmPayment(ctx context.Context, intentID string) (bool, error) {
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve payment intent %s: %w", intentID, err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}
