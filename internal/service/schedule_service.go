package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrNoActivePlan      = errors.New("no active plan for this date")
	ErrScheduleFetch     = errors.New("failed to load schedule data")
	ErrScheduleSave      = errors.New("failed to save schedule changes")
	ErrBadScheduleLength = errors.New("week view must contain exactly 7 entries")
)

// ScheduleService builds the weekly schedule view for a client and
// writes rearranged schedules back to the persisted plan.
type ScheduleService interface {
	// ProjectWeek returns the 7-entry week view (Monday..Sunday) for the
	// week containing anchor. A zero anchor means "now". An empty slice
	// with a nil error means no plan is active for the anchor date.
	ProjectWeek(ctx context.Context, clientID string, anchor time.Time) ([]domain.WeeklyWorkout, error)

	// ProjectPlanWeek builds the same week view from an already-selected
	// plan, so callers that need both the plan and its projection work
	// from one consistent read.
	ProjectPlanWeek(ctx context.Context, plan *domain.WorkoutPlan, anchor time.Time) ([]domain.WeeklyWorkout, error)

	// ActivePlan returns the plan whose date range contains the anchor
	// date, or ErrNoActivePlan.
	ActivePlan(ctx context.Context, clientID string, anchor time.Time) (*domain.WorkoutPlan, error)

	// CommitSchedule rebuilds the plan's weekday->template mapping from
	// the entries (Monday-first order) and persists it. The returned
	// plan is the persisted value; on failure the stored plan is
	// untouched.
	CommitSchedule(ctx context.Context, plan *domain.WorkoutPlan, entries []domain.WeeklyWorkout) (*domain.WorkoutPlan, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	planRepo     repository.PlanRepository
	templateRepo repository.TemplateRepository
	now          func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(planRepo repository.PlanRepository, templateRepo repository.TemplateRepository) ScheduleService {
	return &scheduleService{
		planRepo:     planRepo,
		templateRepo: templateRepo,
		now:          time.Now,
	}
}

// ActivePlan selects the plan active on the anchor date. When several
// plans overlap the date, the most recently updated one wins; equal
// timestamps fall back to the lexicographically greatest ID so the
// choice stays deterministic regardless of fetch order.
func (s *scheduleService) ActivePlan(ctx context.Context, clientID string, anchor time.Time) (*domain.WorkoutPlan, error) {
	if anchor.IsZero() {
		anchor = s.now()
	}
	anchorDate := domain.FormatDate(anchor)

	plans, err := s.planRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var active *domain.WorkoutPlan
	for i := range plans {
		plan := &plans[i]
		if !plan.ActiveOn(anchorDate) {
			continue
		}
		if active == nil || plan.UpdatedAt.After(active.UpdatedAt) ||
			(plan.UpdatedAt.Equal(active.UpdatedAt) && plan.ID > active.ID) {
			active = plan
		}
	}
	if active == nil {
		return nil, ErrNoActivePlan
	}
	return active, nil
}

// ProjectWeek selects the active plan and projects it onto the week
// containing anchor.
func (s *scheduleService) ProjectWeek(ctx context.Context, clientID string, anchor time.Time) ([]domain.WeeklyWorkout, error) {
	if anchor.IsZero() {
		anchor = s.now()
	}

	plan, err := s.ActivePlan(ctx, clientID, anchor)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			// Not an error: the caller renders a no-plan state.
			return []domain.WeeklyWorkout{}, nil
		}
		return nil, err
	}
	return s.ProjectPlanWeek(ctx, plan, anchor)
}

// ProjectPlanWeek builds the week view for the given plan: one entry
// per canonical weekday, Monday first, each bound to its calendar date,
// resolved template and derived status. The projection is pure over
// fetched data; any fetch failure fails the whole projection with no
// partial result.
func (s *scheduleService) ProjectPlanWeek(ctx context.Context, plan *domain.WorkoutPlan, anchor time.Time) ([]domain.WeeklyWorkout, error) {
	if anchor.IsZero() {
		anchor = s.now()
	}

	today := domain.FormatDate(s.now())
	weekDates := domain.WeekDates(anchor)

	entries := make([]domain.WeeklyWorkout, 0, len(domain.Weekdays))
	for i, day := range domain.Weekdays {
		date := weekDates[day]
		templateID := plan.TemplateIDFor(day)

		var template *domain.WorkoutTemplate
		if templateID != "" {
			fetched, err := s.templateRepo.GetByID(ctx, templateID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					return nil, err
				}
				// A dangling template reference renders as absent, but
				// the stored ID is deliberately retained.
				fetched = nil
			}
			template = fetched
		}

		parsed, err := domain.ParseDate(date)
		if err != nil {
			return nil, err
		}

		entries = append(entries, domain.WeeklyWorkout{
			Date:       date,
			DayLetter:  domain.DayLetterAt(i),
			DayNumber:  parsed.Day(),
			DayShort:   domain.DayShortName(day),
			Template:   template,
			TemplateID: templateID,
			Status:     deriveStatus(templateID, date, today),
		})
	}
	return entries, nil
}

// deriveStatus computes a slot's status from its assignment and date.
// Past days with an assigned template read as "missed" without
// consulting any session log; true completion tracking would need a
// workout-session collaborator.
func deriveStatus(templateID, date, today string) domain.ScheduleStatus {
	if templateID == "" {
		return domain.StatusRest
	}
	if date < today {
		return domain.StatusMissed
	}
	return domain.StatusScheduled
}

// CommitSchedule serializes the week view back into the plan's schedule
// map and persists it as a single plan write.
func (s *scheduleService) CommitSchedule(ctx context.Context, plan *domain.WorkoutPlan, entries []domain.WeeklyWorkout) (*domain.WorkoutPlan, error) {
	if len(entries) != len(domain.Weekdays) {
		return nil, ErrBadScheduleLength
	}

	schedule := make(map[domain.Weekday]string, len(domain.Weekdays))
	for i, day := range domain.Weekdays {
		if entries[i].TemplateID != "" {
			schedule[day] = entries[i].TemplateID
		}
	}

	updated := *plan
	updated.Schedule = schedule
	updated.UpdatedAt = s.now().UTC()

	if err := s.planRepo.Save(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
