package planRepo

import (
	"context"
	"fmt"
	"time"

	"taxly/database"
	"taxly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPlanRepo implements PlanRepository using MongoDB.
type MongoPlanRepo struct {
	coll *mongo.Collection
}

// NewMongoPlanRepo creates a new instance of PlanRepository using MongoDB.
func NewMongoPlanRepo() PlanRepository {
	coll := database.MongoClient.Database("taxly").Collection("plans")
	repo := &MongoPlanRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create plan indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPlanRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetAll returns every plan, cheapest first.
func (r *MongoPlanRepo) GetAll() ([]models.Plan, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []models.Plan
	for cursor.Next(ctx) {
		var p models.Plan
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// GetByID returns the plan with the given ID, or nil if none exists.
func (r *MongoPlanRepo) GetByID(id string) (*models.Plan, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var plan models.Plan
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&plan); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch plan with id %s: %w", id, err)
	}
	return &plan, nil
}

// Seed inserts the default catalog if the collection is empty.
func (r *MongoPlanRepo) Seed(plans []models.Plan) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count plans: %w", err)
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(plans))
	for _, p := range plans {
		docs = append(docs, p)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed plans: %w", err)
	}
	return nil
}
