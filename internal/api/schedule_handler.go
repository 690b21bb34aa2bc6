package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes the weekly schedule view and the rearrange
// workflow to authenticated clients.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	sessions        *service.SessionManager
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, sessions *service.SessionManager) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		sessions:        sessions,
	}
}

// --- DTOs ---

type TemplateSummaryResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ExerciseCount int    `json:"exerciseCount"`
}

type WeeklyWorkoutResponse struct {
	Date       string                   `json:"date"`
	DayLetter  string                   `json:"dayLetter"`
	DayNumber  int                      `json:"dayNumber"`
	DayShort   string                   `json:"dayShort"`
	TemplateID string                   `json:"templateId,omitempty"`
	Template   *TemplateSummaryResponse `json:"template,omitempty"`
	Status     domain.ScheduleStatus    `json:"status"`
}

type WeekViewResponse struct {
	PlanID  string                  `json:"planId,omitempty"`
	Mode    service.SessionMode     `json:"mode"`
	Entries []WeeklyWorkoutResponse `json:"entries"`
}

type SelectSlotRequest struct {
	Index *int `json:"index" binding:"required"`
}

type SelectSlotResponse struct {
	SelectedIndex int                     `json:"selectedIndex"`
	Swapped       bool                    `json:"swapped"`
	Entries       []WeeklyWorkoutResponse `json:"entries"`
}

// --- Handler Methods ---

// GetWeek godoc
// @Summary Get the weekly training schedule
// @Description Projects the authenticated client's active plan onto the week containing the given date (default: today) and starts a fresh viewing session. An empty entries list means no plan is active.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param date query string false "Anchor date (YYYY-MM-DD)"
// @Success 200 {object} WeekViewResponse "Week view"
// @Failure 400 {object} gin.H "Invalid date"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /client/schedule/week [get]
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return
	}

	var anchor time.Time
	if dateStr := c.Query("date"); dateStr != "" {
		anchor, err = domain.ParseDate(dateStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
			return
		}
	}

	plan, err := h.scheduleService.ActivePlan(c.Request.Context(), clientID, anchor)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			// No active plan: nothing to rearrange, so no session either.
			h.sessions.End(clientID)
			c.JSON(http.StatusOK, WeekViewResponse{Mode: service.ModeViewing, Entries: []WeeklyWorkoutResponse{}})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load weekly schedule.")
		return
	}

	// Project the plan we just selected; the session's plan and entries
	// come from the same read.
	entries, err := h.scheduleService.ProjectPlanWeek(c.Request.Context(), plan, anchor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load weekly schedule.")
		return
	}

	session, err := h.sessions.Begin(clientID, plan, entries)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to start schedule session.")
		return
	}

	c.JSON(http.StatusOK, WeekViewResponse{
		PlanID:  plan.ID,
		Mode:    session.Mode(),
		Entries: MapWeekToResponse(entries),
	})
}

// EnterRearrange godoc
// @Summary Enter rearrange mode
// @Description Switches the client's schedule session into rearrange mode. Entries are untouched; any pending selection is cleared.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WeekViewResponse
// @Failure 404 {object} gin.H "No schedule session (load the week first)"
// @Router /client/schedule/rearrange [post]
func (h *ScheduleHandler) EnterRearrange(c *gin.Context) {
	session, ok := h.clientSession(c)
	if !ok {
		return
	}

	session.Enter()
	c.JSON(http.StatusOK, WeekViewResponse{
		PlanID:  session.Plan().ID,
		Mode:    session.Mode(),
		Entries: MapWeekToResponse(session.Entries()),
	})
}

// SelectSlot godoc
// @Summary Tap a slot while rearranging
// @Description First tap selects the source slot; a second tap on a different slot swaps the two template assignments. Re-tapping the selected slot is a no-op.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param selection body SelectSlotRequest true "Slot index (0 = Monday)"
// @Success 200 {object} SelectSlotResponse
// @Failure 400 {object} gin.H "Index out of range"
// @Failure 409 {object} gin.H "Session is not in rearrange mode"
// @Router /client/schedule/rearrange/select [post]
func (h *ScheduleHandler) SelectSlot(c *gin.Context) {
	var req SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, ok := h.clientSession(c)
	if !ok {
		return
	}

	result, err := session.SelectSlot(*req.Index)
	if err != nil {
		if errors.Is(err, service.ErrNotRearranging) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrSlotOutOfRange) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to select slot.")
		}
		return
	}

	c.JSON(http.StatusOK, SelectSlotResponse{
		SelectedIndex: result.SelectedIndex,
		Swapped:       result.Swapped,
		Entries:       MapWeekToResponse(result.Entries),
	})
}

// ExitRearrange godoc
// @Summary Leave rearrange mode and save
// @Description Commits the rearranged schedule back into the plan. On a save failure the session stays in rearrange mode with the edits intact so the client can retry.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WeekViewResponse "Schedule saved"
// @Failure 409 {object} gin.H "Not rearranging, or a commit is already in flight"
// @Failure 502 {object} gin.H "Save failed; edits kept"
// @Router /client/schedule/rearrange/done [post]
func (h *ScheduleHandler) ExitRearrange(c *gin.Context) {
	session, ok := h.clientSession(c)
	if !ok {
		return
	}

	plan, err := session.Exit(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotRearranging) || errors.Is(err, service.ErrCommitInFlight) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusBadGateway, "Failed to save schedule changes.")
		}
		return
	}

	c.JSON(http.StatusOK, WeekViewResponse{
		PlanID:  plan.ID,
		Mode:    session.Mode(),
		Entries: MapWeekToResponse(session.Entries()),
	})
}

// clientSession resolves the caller's schedule session or writes the
// error response and reports false.
func (h *ScheduleHandler) clientSession(c *gin.Context) (*service.RearrangeSession, bool) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return nil, false
	}

	session, err := h.sessions.Get(clientID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "No schedule session; load the week first.")
		return nil, false
	}
	return session, true
}

// MapWeekToResponse converts week entries to their response DTOs.
func MapWeekToResponse(entries []domain.WeeklyWorkout) []WeeklyWorkoutResponse {
	resp := make([]WeeklyWorkoutResponse, len(entries))
	for i, entry := range entries {
		resp[i] = WeeklyWorkoutResponse{
			Date:       entry.Date,
			DayLetter:  entry.DayLetter,
			DayNumber:  entry.DayNumber,
			DayShort:   entry.DayShort,
			TemplateID: entry.TemplateID,
			Status:     entry.Status,
		}
		if entry.Template != nil {
			resp[i].Template = &TemplateSummaryResponse{
				ID:            entry.Template.ID,
				Name:          entry.Template.Name,
				ExerciseCount: len(entry.Template.Exercises),
			}
		}
	}
	return resp
}
