package userRepo

import (
	"taxly/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository abstracts persistence for account records.
type UserRepository interface {
	// Create inserts a new user document.
	Create(user *models.User) error
	// Update modifies an existing user document.
	Update(user *models.User) error
	// UpdateFields applies a partial update to the user with the given ID.
	UpdateFields(id string, fields map[string]interface{}) error
	// Delete removes a user document by its ID.
	Delete(id string) error
	// GetByID retrieves a user by its unique ID (full document).
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by email, or nil if none exists.
	GetByEmail(email string) (*models.User, error)
	// GetByEmailWithProjection retrieves a user by email using a projection.
	GetByEmailWithProjection(email string, projection bson.M) (*models.User, error)
}
