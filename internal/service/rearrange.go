package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// --- Error Definitions ---
var (
	ErrNotRearranging = errors.New("session is not in rearrange mode")
	ErrSlotOutOfRange = errors.New("slot index out of range")
	ErrCommitInFlight = errors.New("a schedule commit is already in progress")
	ErrNoSession      = errors.New("no rearrange session for this client")
	ErrEmptyWeek      = errors.New("cannot rearrange an empty week")
)

// NoSelection marks a session with no pending source slot.
const NoSelection = -1

// SessionMode is the rearrange session's top-level state.
type SessionMode string

const (
	ModeViewing     SessionMode = "viewing"
	ModeRearranging SessionMode = "rearranging"
)

// SelectionResult reports the outcome of a slot tap while rearranging.
type SelectionResult struct {
	SelectedIndex int                    `json:"selectedIndex"` // NoSelection after a swap
	Swapped       bool                   `json:"swapped"`
	Entries       []domain.WeeklyWorkout `json:"entries"`
}

// RearrangeSession holds one client's in-progress schedule edit: the
// current week view, the plan it was projected from, and the selection
// state machine. Entries are mutated in memory only; nothing touches
// the stored plan until Exit commits.
type RearrangeSession struct {
	mu sync.Mutex

	clientID string
	plan     *domain.WorkoutPlan
	entries  []domain.WeeklyWorkout

	mode       SessionMode
	selected   int
	committing bool

	schedule ScheduleService
}

// NewRearrangeSession creates a session in viewing mode over a freshly
// projected week.
func NewRearrangeSession(schedule ScheduleService, clientID string, plan *domain.WorkoutPlan, entries []domain.WeeklyWorkout) (*RearrangeSession, error) {
	if len(entries) != len(domain.Weekdays) {
		return nil, ErrEmptyWeek
	}
	return &RearrangeSession{
		clientID: clientID,
		plan:     plan,
		entries:  append([]domain.WeeklyWorkout(nil), entries...),
		mode:     ModeViewing,
		selected: NoSelection,
		schedule: schedule,
	}, nil
}

// Mode returns the session's current mode.
func (s *RearrangeSession) Mode() SessionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Plan returns the plan the session is editing.
func (s *RearrangeSession) Plan() *domain.WorkoutPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Entries returns a copy of the current week view.
func (s *RearrangeSession) Entries() []domain.WeeklyWorkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WeeklyWorkout(nil), s.entries...)
}

// Enter switches to rearrange mode. Any pending selection is cleared;
// the entries are untouched.
func (s *RearrangeSession) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeRearranging
	s.selected = NoSelection
}

// SelectSlot handles a tap on slot index i while rearranging. The first
// tap marks the pending source; tapping the same slot again is a no-op
// (it stays selected); tapping a different slot swaps the two slots'
// template assignments and clears the selection. Swaps may be chained
// without limit.
func (s *RearrangeSession) SelectSlot(i int) (SelectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeRearranging {
		return SelectionResult{}, ErrNotRearranging
	}
	if i < 0 || i >= len(s.entries) {
		return SelectionResult{}, ErrSlotOutOfRange
	}

	if s.selected == NoSelection || s.selected == i {
		s.selected = i
		return SelectionResult{
			SelectedIndex: i,
			Entries:       append([]domain.WeeklyWorkout(nil), s.entries...),
		}, nil
	}

	SwapSlots(s.entries, s.selected, i)
	s.selected = NoSelection
	return SelectionResult{
		SelectedIndex: NoSelection,
		Swapped:       true,
		Entries:       append([]domain.WeeklyWorkout(nil), s.entries...),
	}, nil
}

// SwapSlots exchanges the (template, templateID) pair between entries i
// and j. Each slot keeps its own date and labels. The arriving content
// takes the receiving slot's previous status when a template actually
// arrives, and rest otherwise; statuses are deliberately not recomputed
// from the calendar here.
func SwapSlots(entries []domain.WeeklyWorkout, i, j int) {
	src, dst := entries[i], entries[j]

	entries[i].Template = dst.Template
	entries[i].TemplateID = dst.TemplateID
	if dst.TemplateID == "" {
		entries[i].Status = domain.StatusRest
	} else {
		entries[i].Status = src.Status
	}

	entries[j].Template = src.Template
	entries[j].TemplateID = src.TemplateID
	if src.TemplateID == "" {
		entries[j].Status = domain.StatusRest
	} else {
		entries[j].Status = dst.Status
	}
}

// Exit leaves rearrange mode, committing the edited schedule to the
// plan. On a save failure the session stays in rearrange mode with the
// edited entries intact so the user may re-trigger the commit; the
// stored plan is unchanged. At most one commit is in flight at a time.
func (s *RearrangeSession) Exit(ctx context.Context) (*domain.WorkoutPlan, error) {
	s.mu.Lock()
	if s.mode != ModeRearranging {
		s.mu.Unlock()
		return nil, ErrNotRearranging
	}
	if s.committing {
		s.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	s.committing = true
	plan := s.plan
	entries := append([]domain.WeeklyWorkout(nil), s.entries...)
	s.mu.Unlock()

	updated, err := s.schedule.CommitSchedule(ctx, plan, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.committing = false
	if err != nil {
		return nil, err
	}
	s.plan = updated
	s.mode = ModeViewing
	s.selected = NoSelection
	return updated, nil
}

// sessionTTL bounds how long an untouched schedule session survives
// before a sweep discards it. Sessions are rebuilt on every week load,
// so eviction only ever costs the client a reload.
const sessionTTL = 12 * time.Hour

// managedSession pairs a session with its last-access time.
type managedSession struct {
	session *RearrangeSession
	touched time.Time
}

// SessionManager tracks at most one rearrange session per client. A new
// projection replaces any previous session; sessions are never shared
// across clients. Sessions untouched for sessionTTL are swept out on
// the next Begin so abandoned clients do not accumulate.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
	schedule ScheduleService
	now      func() time.Time
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(schedule ScheduleService) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*managedSession),
		schedule: schedule,
		now:      time.Now,
	}
}

// Begin creates (or replaces) the client's session from a projected
// week and its source plan.
func (m *SessionManager) Begin(clientID string, plan *domain.WorkoutPlan, entries []domain.WeeklyWorkout) (*RearrangeSession, error) {
	session, err := NewRearrangeSession(m.schedule, clientID, plan, entries)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.sessions[clientID] = &managedSession{session: session, touched: m.now()}
	return session, nil
}

// Get returns the client's current session, or ErrNoSession.
func (m *SessionManager) Get(clientID string) (*RearrangeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[clientID]
	if !ok {
		return nil, ErrNoSession
	}
	entry.touched = m.now()
	return entry.session, nil
}

// sweepLocked drops sessions untouched for longer than sessionTTL.
// Callers hold m.mu.
func (m *SessionManager) sweepLocked() {
	cutoff := m.now().Add(-sessionTTL)
	for id, entry := range m.sessions {
		if entry.touched.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// End discards the client's session, if any.
func (m *SessionManager) End(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, clientID)
}
