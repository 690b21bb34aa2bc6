package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// testWeek builds a projected week by hand: Monday holds tpl-A
// (completed), Wednesday holds tpl-B (scheduled), the rest are rest
// days.
func testWeek() []domain.WeeklyWorkout {
	tplA := &domain.WorkoutTemplate{ID: "tpl-A", Name: "Upper Body"}
	tplB := &domain.WorkoutTemplate{ID: "tpl-B", Name: "Lower Body"}

	entries := make([]domain.WeeklyWorkout, 7)
	for i := range entries {
		entries[i] = domain.WeeklyWorkout{
			Date:      domain.FormatDate(mustParseForTest("2024-01-15").AddDate(0, 0, i)),
			DayLetter: domain.DayLetterAt(i),
			DayNumber: 15 + i,
			DayShort:  domain.DayShortName(domain.Weekdays[i]),
			Status:    domain.StatusRest,
		}
	}
	entries[0].Template = tplA
	entries[0].TemplateID = "tpl-A"
	entries[0].Status = domain.StatusCompleted
	entries[2].Template = tplB
	entries[2].TemplateID = "tpl-B"
	entries[2].Status = domain.StatusScheduled
	return entries
}

func mustParseForTest(s string) time.Time {
	parsed, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestSwapSlotsExchangesTemplatePairs(t *testing.T) {
	entries := testWeek()

	SwapSlots(entries, 0, 2)

	if entries[0].TemplateID != "tpl-B" || entries[0].Template == nil || entries[0].Template.ID != "tpl-B" {
		t.Errorf("slot 0: expected tpl-B, got %q", entries[0].TemplateID)
	}
	if entries[2].TemplateID != "tpl-A" || entries[2].Template == nil || entries[2].Template.ID != "tpl-A" {
		t.Errorf("slot 2: expected tpl-A, got %q", entries[2].TemplateID)
	}
	// Dates and labels stay with their slots.
	if entries[0].Date != "2024-01-15" || entries[2].Date != "2024-01-17" {
		t.Errorf("dates must not move: %s / %s", entries[0].Date, entries[2].Date)
	}
}

func TestSwapSlotsBetweenWorkoutsKeepsEachSlotsStatus(t *testing.T) {
	entries := testWeek()

	SwapSlots(entries, 0, 2)

	// Content arrived in both slots, so each keeps its own prior status.
	if entries[0].Status != domain.StatusCompleted {
		t.Errorf("slot 0: expected completed, got %s", entries[0].Status)
	}
	if entries[2].Status != domain.StatusScheduled {
		t.Errorf("slot 2: expected scheduled, got %s", entries[2].Status)
	}
}

func TestSwapSlotsWithRestDay(t *testing.T) {
	entries := testWeek()

	// Move Monday's workout onto Thursday (a rest day).
	SwapSlots(entries, 0, 3)

	if entries[0].TemplateID != "" || entries[0].Status != domain.StatusRest {
		t.Errorf("vacated slot must become a rest day, got %q/%s", entries[0].TemplateID, entries[0].Status)
	}
	// The receiving slot was a rest day, so its prior status (rest)
	// carries over even though it now holds a template. This mirrors the
	// observed behaviour exactly; the status is not recomputed here.
	if entries[3].TemplateID != "tpl-A" {
		t.Errorf("slot 3: expected tpl-A, got %q", entries[3].TemplateID)
	}
	if entries[3].Status != domain.StatusRest {
		t.Errorf("slot 3: expected rest carried over, got %s", entries[3].Status)
	}
}

func TestSwapSlotsDoubleSwapRestoresTemplates(t *testing.T) {
	entries := testWeek()
	original := testWeek()

	SwapSlots(entries, 0, 2)
	SwapSlots(entries, 0, 2)

	for i := range entries {
		if entries[i].TemplateID != original[i].TemplateID {
			t.Errorf("slot %d: templateId %q after double swap, want %q", i, entries[i].TemplateID, original[i].TemplateID)
		}
		if (entries[i].Template == nil) != (original[i].Template == nil) {
			t.Errorf("slot %d: template presence changed after double swap", i)
		}
	}
}

func TestSessionSelectionFlow(t *testing.T) {
	session, err := NewRearrangeSession(nil, "client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek())
	if err != nil {
		t.Fatalf("NewRearrangeSession failed: %v", err)
	}

	if _, err := session.SelectSlot(0); !errors.Is(err, ErrNotRearranging) {
		t.Fatalf("selection outside rearrange mode: got %v, want ErrNotRearranging", err)
	}

	session.Enter()
	if session.Mode() != ModeRearranging {
		t.Fatalf("expected rearranging mode, got %s", session.Mode())
	}

	if _, err := session.SelectSlot(7); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("out-of-range tap: got %v, want ErrSlotOutOfRange", err)
	}

	// First tap marks the source.
	res, err := session.SelectSlot(0)
	if err != nil {
		t.Fatalf("first tap failed: %v", err)
	}
	if res.SelectedIndex != 0 || res.Swapped {
		t.Fatalf("first tap: expected selection at 0 without swap, got %+v", res)
	}

	// Tapping the same slot again leaves the selection alone.
	res, err = session.SelectSlot(0)
	if err != nil {
		t.Fatalf("re-tap failed: %v", err)
	}
	if res.SelectedIndex != 0 || res.Swapped {
		t.Fatalf("re-tap must be a no-op, got %+v", res)
	}

	// A different slot completes the swap and clears the selection.
	res, err = session.SelectSlot(3)
	if err != nil {
		t.Fatalf("second tap failed: %v", err)
	}
	if !res.Swapped || res.SelectedIndex != NoSelection {
		t.Fatalf("second tap must swap and deselect, got %+v", res)
	}
	if res.Entries[3].TemplateID != "tpl-A" || res.Entries[0].TemplateID != "" {
		t.Errorf("swap not reflected in entries: slot0=%q slot3=%q", res.Entries[0].TemplateID, res.Entries[3].TemplateID)
	}

	// Swaps chain: the next tap starts a fresh selection.
	res, err = session.SelectSlot(2)
	if err != nil {
		t.Fatalf("chained tap failed: %v", err)
	}
	if res.SelectedIndex != 2 || res.Swapped {
		t.Fatalf("chained tap: expected a fresh selection, got %+v", res)
	}

	// Re-entering rearrange mode drops the pending selection: the next
	// tap marks a source instead of completing a swap with slot 2.
	session.Enter()
	res, err = session.SelectSlot(4)
	if err != nil {
		t.Fatalf("tap after re-enter failed: %v", err)
	}
	if res.SelectedIndex != 4 || res.Swapped {
		t.Fatalf("re-entering must clear the pending selection, got %+v", res)
	}
}

func TestSessionExitCommitsSchedule(t *testing.T) {
	plan := januaryPlan()
	planRepo := &mockPlanRepo{plans: []domain.WorkoutPlan{plan}}
	anchor := mustDate(t, "2024-01-15")
	svc := newTestScheduleService(planRepo, januaryTemplates(), anchor)

	entries, err := svc.ProjectWeek(context.Background(), "client-1", anchor)
	if err != nil {
		t.Fatalf("ProjectWeek failed: %v", err)
	}
	session, err := NewRearrangeSession(svc, "client-1", &plan, entries)
	if err != nil {
		t.Fatalf("NewRearrangeSession failed: %v", err)
	}
	session.Enter()

	if _, err := session.SelectSlot(0); err != nil {
		t.Fatalf("tap failed: %v", err)
	}
	if _, err := session.SelectSlot(1); err != nil {
		t.Fatalf("tap failed: %v", err)
	}

	updated, err := session.Exit(context.Background())
	if err != nil {
		t.Fatalf("Exit failed: %v", err)
	}
	if session.Mode() != ModeViewing {
		t.Errorf("expected viewing mode after commit, got %s", session.Mode())
	}
	if planRepo.saveCalls != 1 {
		t.Errorf("expected exactly one save, got %d", planRepo.saveCalls)
	}
	if updated.Schedule[domain.Tuesday] != "tpl-A" {
		t.Errorf("Tuesday: expected tpl-A, got %q", updated.Schedule[domain.Tuesday])
	}
	if _, ok := updated.Schedule[domain.Monday]; ok {
		t.Error("Monday became a rest day and must be absent from the schedule")
	}

	// A fresh projection now reflects the committed rearrangement.
	fresh, err := svc.ProjectWeek(context.Background(), "client-1", anchor)
	if err != nil {
		t.Fatalf("fresh projection failed: %v", err)
	}
	if fresh[1].TemplateID != "tpl-A" || fresh[0].TemplateID != "" {
		t.Errorf("committed swap not visible: slot0=%q slot1=%q", fresh[0].TemplateID, fresh[1].TemplateID)
	}
}

func TestSessionExitSaveFailureKeepsEdits(t *testing.T) {
	plan := januaryPlan()
	planRepo := &mockPlanRepo{plans: []domain.WorkoutPlan{plan}, saveErr: errors.New("write timeout")}
	anchor := mustDate(t, "2024-01-15")
	svc := newTestScheduleService(planRepo, januaryTemplates(), anchor)

	entries, err := svc.ProjectWeek(context.Background(), "client-1", anchor)
	if err != nil {
		t.Fatalf("ProjectWeek failed: %v", err)
	}
	session, err := NewRearrangeSession(svc, "client-1", &plan, entries)
	if err != nil {
		t.Fatalf("NewRearrangeSession failed: %v", err)
	}
	session.Enter()
	if _, err := session.SelectSlot(0); err != nil {
		t.Fatalf("tap failed: %v", err)
	}
	if _, err := session.SelectSlot(1); err != nil {
		t.Fatalf("tap failed: %v", err)
	}

	if _, err := session.Exit(context.Background()); err == nil {
		t.Fatal("expected commit failure to surface")
	}

	// The session keeps the edits and stays editable.
	if session.Mode() != ModeRearranging {
		t.Errorf("session must stay in rearrange mode, got %s", session.Mode())
	}
	kept := session.Entries()
	if kept[1].TemplateID != "tpl-A" {
		t.Errorf("edits must survive a failed commit, slot 1 has %q", kept[1].TemplateID)
	}

	// Retrying after the outage succeeds.
	planRepo.saveErr = nil
	if _, err := session.Exit(context.Background()); err != nil {
		t.Fatalf("retry after outage failed: %v", err)
	}
	if session.Mode() != ModeViewing {
		t.Errorf("expected viewing mode after successful retry, got %s", session.Mode())
	}
}

// blockingPlanRepo stalls Save until released, so a second commit can
// be attempted while the first is still in flight.
type blockingPlanRepo struct {
	*mockPlanRepo
	entered chan struct{}
	release chan struct{}
}

func (r *blockingPlanRepo) Save(ctx context.Context, plan *domain.WorkoutPlan) error {
	r.entered <- struct{}{}
	<-r.release
	return r.mockPlanRepo.Save(ctx, plan)
}

func TestSessionExitRejectsSecondCommitInFlight(t *testing.T) {
	plan := januaryPlan()
	repo := &blockingPlanRepo{
		mockPlanRepo: &mockPlanRepo{plans: []domain.WorkoutPlan{plan}},
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	anchor := mustDate(t, "2024-01-15")
	svc := newTestScheduleService(repo, januaryTemplates(), anchor)

	entries, err := svc.ProjectWeek(context.Background(), "client-1", anchor)
	if err != nil {
		t.Fatalf("ProjectWeek failed: %v", err)
	}
	session, err := NewRearrangeSession(svc, "client-1", &plan, entries)
	if err != nil {
		t.Fatalf("NewRearrangeSession failed: %v", err)
	}
	session.Enter()
	if _, err := session.SelectSlot(0); err != nil {
		t.Fatalf("tap failed: %v", err)
	}
	if _, err := session.SelectSlot(1); err != nil {
		t.Fatalf("tap failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.Exit(context.Background())
		done <- err
	}()
	// Wait until the first commit is inside the save.
	<-repo.entered

	if _, err := session.Exit(context.Background()); !errors.Is(err, ErrCommitInFlight) {
		t.Fatalf("second commit: got %v, want ErrCommitInFlight", err)
	}

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	if session.Mode() != ModeViewing {
		t.Errorf("expected viewing mode after the first commit, got %s", session.Mode())
	}
	if repo.saveCalls != 1 {
		t.Errorf("expected exactly one save, got %d", repo.saveCalls)
	}
	if repo.saved.Schedule[domain.Tuesday] != "tpl-A" {
		t.Errorf("Tuesday: expected tpl-A, got %q", repo.saved.Schedule[domain.Tuesday])
	}
}

func TestSessionExitRequiresRearrangeMode(t *testing.T) {
	session, err := NewRearrangeSession(nil, "client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek())
	if err != nil {
		t.Fatalf("NewRearrangeSession failed: %v", err)
	}
	if _, err := session.Exit(context.Background()); !errors.Is(err, ErrNotRearranging) {
		t.Fatalf("got %v, want ErrNotRearranging", err)
	}
}

func TestNewRearrangeSessionRejectsShortWeek(t *testing.T) {
	_, err := NewRearrangeSession(nil, "client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek()[:5])
	if !errors.Is(err, ErrEmptyWeek) {
		t.Fatalf("got %v, want ErrEmptyWeek", err)
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	manager := NewSessionManager(nil)

	if _, err := manager.Get("client-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}

	first, err := manager.Begin("client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek())
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	got, err := manager.Get("client-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != first {
		t.Error("Get must return the session Begin created")
	}

	// A new projection replaces the previous session.
	second, err := manager.Begin("client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek())
	if err != nil {
		t.Fatalf("second Begin failed: %v", err)
	}
	got, _ = manager.Get("client-1")
	if got != second || got == first {
		t.Error("Begin must replace the existing session")
	}

	manager.End("client-1")
	if _, err := manager.Get("client-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after End: got %v, want ErrNoSession", err)
	}
}

func TestSessionManagerSweepsStaleSessions(t *testing.T) {
	manager := NewSessionManager(nil)
	current := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	if _, err := manager.Begin("client-1", &domain.WorkoutPlan{ID: "plan-1"}, testWeek()); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Still fresh just under the deadline; Get refreshes the timestamp.
	current = current.Add(sessionTTL - time.Minute)
	if _, err := manager.Get("client-1"); err != nil {
		t.Fatalf("fresh session swept: %v", err)
	}

	// Go stale, then let another client's load trigger the sweep.
	current = current.Add(sessionTTL + time.Minute)
	if _, err := manager.Begin("client-2", &domain.WorkoutPlan{ID: "plan-2"}, testWeek()); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := manager.Get("client-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stale session must be swept, got %v", err)
	}
	if _, err := manager.Get("client-2"); err != nil {
		t.Fatalf("live session lost in sweep: %v", err)
	}
}
