package planRepo

import "taxly/models"

// PlanRepository abstracts persistence for the subscription plan catalog.
type PlanRepository interface {
	// GetAll returns every plan in display order.
	GetAll() ([]models.Plan, error)
	// GetByID returns the plan with the given ID, or nil if none exists.
	GetByID(id string) (*models.Plan, error)
	// Seed inserts the default catalog if the collection is empty.
	Seed(plans []models.Plan) error
}
