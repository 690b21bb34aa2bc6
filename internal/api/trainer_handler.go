package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

type TemplateExerciseRequest struct {
	Name     string `json:"name" binding:"required"`
	Sets     int    `json:"sets"`
	Reps     string `json:"reps"`
	RestSecs int    `json:"restSecs"`
	Notes    string `json:"notes"`
}

type CreateTemplateRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Exercises   []TemplateExerciseRequest `json:"exercises"`
}

type TemplateResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Exercises   []domain.TemplateExercise `json:"exercises"`
	HasDemo     bool                      `json:"hasDemo"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

type CreatePlanRequest struct {
	Name      string            `json:"name" binding:"required"`
	StartDate string            `json:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate   string            `json:"endDate" binding:"required"`   // YYYY-MM-DD
	Schedule  map[string]string `json:"schedule"`                     // weekday name -> template ID
}

type PlanResponse struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"clientId"`
	Name      string            `json:"name"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	Schedule  map[string]string `json:"schedule"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type DemoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Client Management ---

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added"
// @Failure 403 {object} gin.H "User is not a client, or already has a trainer"
// @Failure 404 {object} gin.H "Client not found"
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) || errors.Is(err, service.ErrClientAlreadyAssigned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get the trainer's managed clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed clients"
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}
	if clients == nil {
		clients = []domain.User{}
	}

	resp := make([]UserResponse, len(clients))
	for i := range clients {
		resp[i] = MapUserToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, resp)
}

// --- Template Management ---

// CreateTemplate godoc
// @Summary Create a workout template
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body CreateTemplateRequest true "Template definition"
// @Success 201 {object} TemplateResponse
// @Router /trainer/templates [post]
func (h *TrainerHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	exercises := make([]domain.TemplateExercise, len(req.Exercises))
	for i, ex := range req.Exercises {
		exercises[i] = domain.TemplateExercise{
			Name:     ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			RestSecs: ex.RestSecs,
			Notes:    ex.Notes,
		}
	}

	template, err := h.trainerService.CreateTemplate(c.Request.Context(), trainerID, req.Name, req.Description, exercises)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create template.")
		return
	}

	c.JSON(http.StatusCreated, MapTemplateToResponse(template))
}

// GetTemplates godoc
// @Summary List the trainer's workout templates
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TemplateResponse
// @Router /trainer/templates [get]
func (h *TrainerHandler) GetTemplates(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	templates, err := h.trainerService.GetTemplates(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}

	resp := make([]TemplateResponse, len(templates))
	for i := range templates {
		resp[i] = MapTemplateToResponse(&templates[i])
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateTemplate godoc
// @Summary Update a workout template
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Param template body CreateTemplateRequest true "Template definition"
// @Success 200 {object} TemplateResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Template not found"
// @Router /trainer/templates/{templateId} [put]
func (h *TrainerHandler) UpdateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	exercises := make([]domain.TemplateExercise, len(req.Exercises))
	for i, ex := range req.Exercises {
		exercises[i] = domain.TemplateExercise{
			Name:     ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			RestSecs: ex.RestSecs,
			Notes:    ex.Notes,
		}
	}

	template, err := h.trainerService.UpdateTemplate(c.Request.Context(), trainerID, &domain.WorkoutTemplate{
		ID:          c.Param("templateId"),
		Name:        req.Name,
		Description: req.Description,
		Exercises:   exercises,
	})
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrTemplateAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update template.")
		}
		return
	}

	c.JSON(http.StatusOK, MapTemplateToResponse(template))
}

// DeleteTemplate godoc
// @Summary Delete a workout template
// @Tags Trainer
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Template not found"
// @Router /trainer/templates/{templateId} [delete]
func (h *TrainerHandler) DeleteTemplate(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	err = h.trainerService.DeleteTemplate(c.Request.Context(), trainerID, c.Param("templateId"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrTemplateAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete template.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestDemoUpload godoc
// @Summary Request a presigned upload URL for a template demo video
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Param upload body DemoUploadRequest true "Video content type"
// @Success 200 {object} service.DemoUploadResponse
// @Router /trainer/templates/{templateId}/demo [post]
func (h *TrainerHandler) RequestDemoUpload(c *gin.Context) {
	var req DemoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	resp, err := h.trainerService.RequestDemoUploadURL(c.Request.Context(), trainerID, c.Param("templateId"), req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrTemplateAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDemoDownload godoc
// @Summary Get a presigned download URL for a template demo video
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} gin.H "downloadUrl"
// @Router /trainer/templates/{templateId}/demo [get]
func (h *TrainerHandler) GetDemoDownload(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	url, err := h.trainerService.GetDemoDownloadURL(c.Request.Context(), trainerID, c.Param("templateId"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrTemplateAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// --- Plan Management ---

// CreatePlan godoc
// @Summary Create a workout plan for a client
// @Description Assigns templates to weekdays over a date range. Omitted weekdays are rest days.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param plan body CreatePlanRequest true "Plan definition"
// @Success 201 {object} PlanResponse
// @Failure 400 {object} gin.H "Invalid dates or schedule"
// @Failure 403 {object} gin.H "Client not managed by this trainer"
// @Router /trainer/clients/{clientId}/plans [post]
func (h *TrainerHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	schedule := make(map[domain.Weekday]string, len(req.Schedule))
	for day, templateID := range req.Schedule {
		schedule[domain.Weekday(day)] = templateID
	}

	plan, err := h.trainerService.CreatePlan(c.Request.Context(), trainerID, c.Param("clientId"), req.Name, req.StartDate, req.EndDate, schedule)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged), errors.Is(err, service.ErrTemplateAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidDateRange), errors.Is(err, service.ErrUnknownScheduleDay), errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// GetPlansForClient godoc
// @Summary List the plans this trainer created for a client
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} PlanResponse
// @Router /trainer/clients/{clientId}/plans [get]
func (h *TrainerHandler) GetPlansForClient(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	plans, err := h.trainerService.GetPlansForClient(c.Request.Context(), trainerID, c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = MapPlanToResponse(&plans[i])
	}
	c.JSON(http.StatusOK, resp)
}

// DeletePlan godoc
// @Summary Delete a workout plan
// @Tags Trainer
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Plan not found or not owned"
// @Router /trainer/plans/{planId} [delete]
func (h *TrainerHandler) DeletePlan(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	if err := h.trainerService.DeletePlan(c.Request.Context(), trainerID, c.Param("planId")); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapTemplateToResponse converts a domain WorkoutTemplate to its DTO.
func MapTemplateToResponse(template *domain.WorkoutTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          template.ID,
		Name:        template.Name,
		Description: template.Description,
		Exercises:   template.Exercises,
		HasDemo:     template.DemoObjectKey != "",
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
}

// MapPlanToResponse converts a domain WorkoutPlan to its DTO.
func MapPlanToResponse(plan *domain.WorkoutPlan) PlanResponse {
	schedule := make(map[string]string, len(plan.Schedule))
	for day, templateID := range plan.Schedule {
		schedule[string(day)] = templateID
	}
	return PlanResponse{
		ID:        plan.ID,
		ClientID:  plan.ClientID,
		Name:      plan.Name,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Schedule:  schedule,
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
	}
}
