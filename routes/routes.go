package routes

import (
	"SproutGo/config"
	"SproutGo/controllers"
	"SproutGo/middleware"
	"SproutGo/services"
	"SproutGo/storage"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the stores, services, and controllers onto the
// engine. The returned controllers expose Wait() for graceful shutdown.
func RegisterRoutes(r *gin.Engine, client *services.OpenAIClient, conf config.Config) (*controllers.ChatController, *services.ChatService) {
	store := storage.NewGormStore(config.DB)

	limiter := services.NewRateLimiter(services.NewRedisCounterStore(config.RedisClient))
	progressService := services.NewProgressService(store)
	schedulerService := services.NewSchedulerService(store, store)
	generator := services.NewTaskGenerator(client, progressService)
	taskService := services.NewTaskService(store)
	notificationService := services.NewNotificationService(store, conf.MorningNotifyHour)
	orchestrator := services.NewCompletionOrchestrator(
		store, progressService, generator, taskService, limiter, notificationService)
	chatService := services.NewChatService(client)

	authController := controllers.AuthController{}
	childController := controllers.NewChildController(store, progressService)
	progressController := controllers.NewProgressController(progressService)
	taskController := controllers.NewTaskController(
		store, schedulerService, limiter, generator, taskService,
		progressService, orchestrator, notificationService)
	chatController := controllers.NewChatController(chatService, limiter)
	notificationController := controllers.NewNotificationController(notificationService)

	// Public routes (no auth)
	public := r.Group("/api/v1")
	{
		public.POST("/auth/test-user", authController.CreateTestUser)
	}

	// Authenticated routes
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("/child", childController.Onboard)
		private.GET("/child", childController.GetChild)

		private.GET("/tasks", taskController.GetDailyTasks)
		private.POST("/tasks/generate", taskController.GenerateTasks)
		private.POST("/tasks/:id/toggle", taskController.ToggleTask)

		private.GET("/progress", progressController.GetProgress)
		private.PUT("/progress", progressController.UpdateProgress)
		private.POST("/progress/reset", progressController.ResetProgress)

		private.POST("/chat", chatController.SendMessage)

		private.GET("/notifications", notificationController.List)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	return chatController, chatService
}
