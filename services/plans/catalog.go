package plans

import (
	"context"
	"fmt"

	planRepo "taxly/database/repository/plan"
	"taxly/models"
)

// Catalog exposes the subscription tiers shown during plan selection.
type Catalog interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// DefaultCatalog is the production implementation backed by the plan repository.
type DefaultCatalog struct {
	Repo planRepo.PlanRepository
}

// NewDefaultCatalog wires the catalog and seeds the default tiers.
func NewDefaultCatalog(repo planRepo.PlanRepository) (*DefaultCatalog, error) {
	if err := repo.Seed(DefaultPlans()); err != nil {
		return nil, fmt.Errorf("failed to seed plan catalog: %w", err)
	}
	return &DefaultCatalog{Repo: repo}, nil
}

// ListPlans returns every plan in display order.
func (c *DefaultCatalog) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return c.Repo.GetAll()
}

// GetPlan returns the plan with the given ID, or nil if none exists.
func (c *DefaultCatalog) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	return c.Repo.GetByID(id)
}

// DefaultPlans is the catalog seeded on first start.
func DefaultPlans() []models.Plan {
	return []models.Plan{
		{
			ID:           "trial",
			Name:         "Free Trial",
			Price:        0,
			Currency:     "usd",
			MessageLimit: 50,
			DurationDays: 14,
			Features: []string{
				"AI tax Q&A, 50 messages",
				"Document checklist",
				"Email support",
			},
		},
		{
			ID:           "starter",
			Name:         "Starter",
			Price:        1900,
			Currency:     "usd",
			MessageLimit: 500,
			DurationDays: 30,
			Features: []string{
				"AI tax Q&A, 500 messages/month",
				"Deduction finder",
				"Filing reminders",
				"Email support",
			},
		},
		{
			ID:           "pro",
			Name:         "Professional",
			Price:        4900,
			Currency:     "usd",
			MessageLimit: 5000,
			DurationDays: 30,
			Features: []string{
				"AI tax Q&A, 5000 messages/month",
				"Deduction finder",
				"Multi-entity support",
				"Priority support",
			},
		},
	}
}
