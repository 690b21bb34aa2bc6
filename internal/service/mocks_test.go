package service

import (
	"context"
	"sort"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

// mockPlanRepo implements repository.PlanRepository backed by a slice.
type mockPlanRepo struct {
	plans     []domain.WorkoutPlan
	listErr   error
	listCalls int
	saveErr   error
	saveCalls int
	saved     *domain.WorkoutPlan
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error) {
	m.plans = append(m.plans, *plan)
	return plan.ID, nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	for i := range m.plans {
		if m.plans[i].ID == id {
			plan := m.plans[i]
			return &plan, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPlanRepo) GetByClientID(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.WorkoutPlan
	for _, plan := range m.plans {
		if plan.ClientID == clientID {
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockPlanRepo) GetByClientAndTrainerID(ctx context.Context, clientID, trainerID string) ([]domain.WorkoutPlan, error) {
	var out []domain.WorkoutPlan
	for _, plan := range m.plans {
		if plan.ClientID == clientID && plan.TrainerID == trainerID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) Save(ctx context.Context, plan *domain.WorkoutPlan) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	for i := range m.plans {
		if m.plans[i].ID == plan.ID {
			m.plans[i] = *plan
			saved := *plan
			m.saved = &saved
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockPlanRepo) Delete(ctx context.Context, planID string, trainerID string) error {
	for i := range m.plans {
		if m.plans[i].ID == planID && m.plans[i].TrainerID == trainerID {
			m.plans = append(m.plans[:i], m.plans[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// mockTemplateRepo implements repository.TemplateRepository backed by a map.
type mockTemplateRepo struct {
	templates map[string]domain.WorkoutTemplate
	getErr    error
	getCalls  int
}

func newMockTemplateRepo(templates ...domain.WorkoutTemplate) *mockTemplateRepo {
	m := &mockTemplateRepo{templates: make(map[string]domain.WorkoutTemplate)}
	for _, t := range templates {
		m.templates[t.ID] = t
	}
	return m
}

func (m *mockTemplateRepo) Create(ctx context.Context, template *domain.WorkoutTemplate) (string, error) {
	m.templates[template.ID] = *template
	return template.ID, nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutTemplate, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	template, ok := m.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &template, nil
}

func (m *mockTemplateRepo) GetByTrainerID(ctx context.Context, trainerID string) ([]domain.WorkoutTemplate, error) {
	var out []domain.WorkoutTemplate
	for _, t := range m.templates {
		if t.TrainerID == trainerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, template *domain.WorkoutTemplate) error {
	if _, ok := m.templates[template.ID]; !ok {
		return repository.ErrNotFound
	}
	m.templates[template.ID] = *template
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id string, trainerID string) error {
	if _, ok := m.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// mockUserRepo implements repository.UserRepository backed by a map.
type mockUserRepo struct {
	users   map[string]domain.User // keyed by ID
	byEmail map[string]string      // email -> ID
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (string, error) {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	return user.ID, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := m.users[id]
	return &user, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (m *mockUserRepo) AddClientIDToTrainer(ctx context.Context, trainerID, clientID string) error {
	trainer, ok := m.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	trainer.ClientIDs = append(trainer.ClientIDs, clientID)
	m.users[trainerID] = trainer
	return nil
}

func (m *mockUserRepo) GetClientsByTrainerID(ctx context.Context, trainerID string) ([]domain.User, error) {
	trainer, ok := m.users[trainerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var out []domain.User
	for _, id := range trainer.ClientIDs {
		if client, ok := m.users[id]; ok {
			out = append(out, client)
		}
	}
	return out, nil
}

func (m *mockUserRepo) SetTrainerForClient(ctx context.Context, clientID, trainerID string) error {
	client, ok := m.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.TrainerID = trainerID
	m.users[clientID] = client
	return nil
}
