package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
	ErrTemplateNotFound      = errors.New("workout template not found")
	ErrTemplateAccessDenied  = errors.New("access denied to modify this template")
	ErrPlanNotFound          = errors.New("workout plan not found")
	ErrPlanAccessDenied      = errors.New("access denied to modify this plan")
	ErrInvalidDateRange      = errors.New("plan startDate must not be after endDate")
	ErrUnknownScheduleDay    = errors.New("schedule contains an unknown weekday")
	ErrUploadURLError        = errors.New("failed to generate upload URL")
	ErrDownloadURLError      = errors.New("failed to generate download URL")
)

// TrainerService covers everything a trainer does: managing clients,
// the template library, and the plans that assign templates to weekdays.
type TrainerService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, trainerID string, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID string) ([]domain.User, error)

	// Template Management
	CreateTemplate(ctx context.Context, trainerID, name, description string, exercises []domain.TemplateExercise) (*domain.WorkoutTemplate, error)
	GetTemplates(ctx context.Context, trainerID string) ([]domain.WorkoutTemplate, error)
	UpdateTemplate(ctx context.Context, trainerID string, template *domain.WorkoutTemplate) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, trainerID, templateID string) error

	// Template demo media
	RequestDemoUploadURL(ctx context.Context, trainerID, templateID, contentType string) (*DemoUploadResponse, error)
	GetDemoDownloadURL(ctx context.Context, trainerID, templateID string) (string, error)

	// Plan Management
	CreatePlan(ctx context.Context, trainerID, clientID, name, startDate, endDate string, schedule map[domain.Weekday]string) (*domain.WorkoutPlan, error)
	GetPlansForClient(ctx context.Context, trainerID, clientID string) ([]domain.WorkoutPlan, error)
	DeletePlan(ctx context.Context, trainerID, planID string) error
}

// DemoUploadResponse carries the presigned URL and the object key the
// trainer must confirm back once the upload finishes.
type DemoUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo     repository.UserRepository
	templateRepo repository.TemplateRepository
	planRepo     repository.PlanRepository
	mediaStorage storage.MediaStorage
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	planRepo repository.PlanRepository,
	mediaStorage storage.MediaStorage,
) TrainerService {
	return &trainerService{
		userRepo:     userRepo,
		templateRepo: templateRepo,
		planRepo:     planRepo,
		mediaStorage: mediaStorage,
	}
}

// === Client Management ===

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID string, clientEmail string) (*domain.User, error) {
	if trainerID == "" || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != "" {
		if client.TrainerID == trainerID {
			// Already managed by this trainer; nothing to do.
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		return nil, err
	}

	client.TrainerID = trainerID
	return client, nil
}

// GetManagedClients retrieves the clients managed by this trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID string) ([]domain.User, error) {
	return s.userRepo.GetClientsByTrainerID(ctx, trainerID)
}

// === Template Management ===

// CreateTemplate adds a new template to the trainer's library.
func (s *trainerService) CreateTemplate(ctx context.Context, trainerID, name, description string, exercises []domain.TemplateExercise) (*domain.WorkoutTemplate, error) {
	if trainerID == "" || name == "" {
		return nil, errors.New("trainer ID and template name are required")
	}

	template := &domain.WorkoutTemplate{
		TrainerID:   trainerID,
		Name:        name,
		Description: description,
		Exercises:   exercises,
	}
	templateID, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = templateID
	return template, nil
}

// GetTemplates lists the trainer's template library.
func (s *trainerService) GetTemplates(ctx context.Context, trainerID string) ([]domain.WorkoutTemplate, error) {
	return s.templateRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateTemplate replaces the mutable fields of a template the trainer owns.
func (s *trainerService) UpdateTemplate(ctx context.Context, trainerID string, template *domain.WorkoutTemplate) (*domain.WorkoutTemplate, error) {
	existing, err := s.ownedTemplate(ctx, trainerID, template.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = template.Name
	existing.Description = template.Description
	existing.Exercises = template.Exercises

	if err := s.templateRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTemplate removes a template the trainer owns, along with any
// demo media attached to it.
func (s *trainerService) DeleteTemplate(ctx context.Context, trainerID, templateID string) error {
	existing, err := s.ownedTemplate(ctx, trainerID, templateID)
	if err != nil {
		return err
	}

	if err := s.templateRepo.Delete(ctx, templateID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	if existing.DemoObjectKey != "" {
		// Media cleanup is best-effort; the template record is already gone.
		_ = s.mediaStorage.DeleteObject(ctx, existing.DemoObjectKey)
	}
	return nil
}

// ownedTemplate fetches a template and verifies the trainer owns it.
func (s *trainerService) ownedTemplate(ctx context.Context, trainerID, templateID string) (*domain.WorkoutTemplate, error) {
	if trainerID == "" || templateID == "" {
		return nil, errors.New("trainer ID and template ID are required")
	}
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.TrainerID != trainerID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}

// === Template Demo Media ===

// RequestDemoUploadURL issues a presigned PUT URL for a template demo
// video and records the object key on the template.
func (s *trainerService) RequestDemoUploadURL(ctx context.Context, trainerID, templateID, contentType string) (*DemoUploadResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, errors.New("invalid or missing video content type")
	}

	template, err := s.ownedTemplate(ctx, trainerID, templateID)
	if err != nil {
		return nil, err
	}

	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("templates", trainerID, templateID, fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.mediaStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	template.DemoObjectKey = objectKey
	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}

	return &DemoUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// GetDemoDownloadURL issues a presigned GET URL for a template's demo video.
func (s *trainerService) GetDemoDownloadURL(ctx context.Context, trainerID, templateID string) (string, error) {
	template, err := s.ownedTemplate(ctx, trainerID, templateID)
	if err != nil {
		return "", err
	}
	if template.DemoObjectKey == "" {
		return "", ErrTemplateNotFound
	}

	downloadURL, err := s.mediaStorage.GeneratePresignedDownloadURL(ctx, template.DemoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// === Plan Management ===

// CreatePlan creates a plan for a managed client. Dates are ISO
// YYYY-MM-DD strings and the range is inclusive on both ends.
func (s *trainerService) CreatePlan(ctx context.Context, trainerID, clientID, name, startDate, endDate string, schedule map[domain.Weekday]string) (*domain.WorkoutPlan, error) {
	if trainerID == "" || clientID == "" || name == "" {
		return nil, errors.New("trainer ID, client ID, and plan name are required")
	}
	if _, err := domain.ParseDate(startDate); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(endDate); err != nil {
		return nil, err
	}
	if startDate > endDate {
		return nil, ErrInvalidDateRange
	}
	if err := s.validateSchedule(ctx, trainerID, schedule); err != nil {
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}

	plan := &domain.WorkoutPlan{
		TrainerID: trainerID,
		ClientID:  clientID,
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Schedule:  schedule,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// validateSchedule checks weekday keys and template ownership. Rest
// days are simply absent from the map.
func (s *trainerService) validateSchedule(ctx context.Context, trainerID string, schedule map[domain.Weekday]string) error {
	known := make(map[domain.Weekday]bool, len(domain.Weekdays))
	for _, day := range domain.Weekdays {
		known[day] = true
	}
	for day, templateID := range schedule {
		if !known[day] {
			return ErrUnknownScheduleDay
		}
		if templateID == "" {
			return errors.New("schedule must omit rest days rather than map them to an empty template")
		}
		template, err := s.templateRepo.GetByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTemplateNotFound
			}
			return err
		}
		if template.TrainerID != trainerID {
			return ErrTemplateAccessDenied
		}
	}
	return nil
}

// GetPlansForClient lists the plans this trainer created for a client.
func (s *trainerService) GetPlansForClient(ctx context.Context, trainerID, clientID string) ([]domain.WorkoutPlan, error) {
	return s.planRepo.GetByClientAndTrainerID(ctx, clientID, trainerID)
}

// DeletePlan removes a plan the trainer owns.
func (s *trainerService) DeletePlan(ctx context.Context, trainerID, planID string) error {
	err := s.planRepo.Delete(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}
