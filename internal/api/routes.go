package api

import (
	"net/http"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	scheduleService service.ScheduleService,
	sessions *service.SessionManager,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService)
	scheduleHandler := NewScheduleHandler(scheduleService, sessions)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
		})

		// --- Trainer Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerGroup.GET("/clients", trainerHandler.GetManagedClients)

			trainerGroup.POST("/templates", trainerHandler.CreateTemplate)
			trainerGroup.GET("/templates", trainerHandler.GetTemplates)
			trainerGroup.PUT("/templates/:templateId", trainerHandler.UpdateTemplate)
			trainerGroup.DELETE("/templates/:templateId", trainerHandler.DeleteTemplate)
			trainerGroup.POST("/templates/:templateId/demo", trainerHandler.RequestDemoUpload)
			trainerGroup.GET("/templates/:templateId/demo", trainerHandler.GetDemoDownload)

			trainerGroup.POST("/clients/:clientId/plans", trainerHandler.CreatePlan)
			trainerGroup.GET("/clients/:clientId/plans", trainerHandler.GetPlansForClient)
			trainerGroup.DELETE("/plans/:planId", trainerHandler.DeletePlan)
		}

		// --- Client Schedule Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/schedule/week", scheduleHandler.GetWeek)
			clientGroup.POST("/schedule/rearrange", scheduleHandler.EnterRearrange)
			clientGroup.POST("/schedule/rearrange/select", scheduleHandler.SelectSlot)
			clientGroup.POST("/schedule/rearrange/done", scheduleHandler.ExitRearrange)
		}
	}
}
