package repository

import (
	"context"

	"fitcoach/coaching-app/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID string) error
	GetClientsByTrainerID(ctx context.Context, trainerID string) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID string) error
}

// TemplateRepository defines the interface for interacting with workout
// template data. GetByID returns ErrNotFound for an unknown ID; callers
// in the schedule path treat that as a valid (absent) outcome rather
// than a failure.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.WorkoutTemplate) (string, error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutTemplate, error)
	GetByTrainerID(ctx context.Context, trainerID string) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, template *domain.WorkoutTemplate) error
	Delete(ctx context.Context, id string, trainerID string) error // Ensure trainer owns the template
}

// PlanRepository defines the interface for interacting with workout
// plan data. Save replaces the full plan record; the store provides
// last-write-wins semantics on a single plan, nothing more.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error)
	GetByClientID(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error)
	GetByClientAndTrainerID(ctx context.Context, clientID, trainerID string) ([]domain.WorkoutPlan, error)
	Save(ctx context.Context, plan *domain.WorkoutPlan) error
	Delete(ctx context.Context, planID string, trainerID string) error
}
