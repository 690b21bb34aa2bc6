package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "workout_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new WorkoutPlan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new workout plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error) {
	if plan.ClientID == "" || plan.TrainerID == "" || plan.Name == "" {
		return "", errors.New("plan requires clientId, trainerId, and name")
	}
	if plan.StartDate == "" || plan.EndDate == "" {
		return "", errors.New("plan requires startDate and endDate")
	}
	plan.ID = uuid.NewString()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Schedule == nil {
		plan.Schedule = map[domain.Weekday]string{}
	}

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return "", err
	}
	return plan.ID, nil
}

// GetByID retrieves a single workout plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByClientID retrieves all plans for a client, most recently updated
// first. The schedule projector relies on this ordering for its
// deterministic active-plan tie-break.
func (r *mongoPlanRepository) GetByClientID(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error) {
	filter := bson.M{"clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.WorkoutPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	// Empty slice when the client has no plans; not an error.
	return plans, nil
}

// GetByClientAndTrainerID retrieves all plans for a specific client created by a specific trainer.
func (r *mongoPlanRepository) GetByClientAndTrainerID(ctx context.Context, clientID, trainerID string) ([]domain.WorkoutPlan, error) {
	filter := bson.M{
		"clientId":  clientID,
		"trainerId": trainerID,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.WorkoutPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Save replaces the stored plan with the given value. A single atomic
// write of one plan record; last write wins.
func (r *mongoPlanRepository) Save(ctx context.Context, plan *domain.WorkoutPlan) error {
	if plan.ID == "" {
		return errors.New("workout plan ID is required for save")
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": plan.ID}, plan)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan, scoped to the owning trainer.
func (r *mongoPlanRepository) Delete(ctx context.Context, planID string, trainerID string) error {
	if planID == "" || trainerID == "" {
		return errors.New("plan ID and trainer ID are required for deletion")
	}

	// Filter ensures the plan exists AND belongs to the specified trainer.
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": planID, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: all plans for a client, newest edit first.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
	}
	// Index creation failures are non-fatal at startup.
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
