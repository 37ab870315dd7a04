package api

import (
	"alcyxob/plan-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	chatService service.ChatService,
	calendarService service.CalendarService,
) {
	authHandler := NewAuthHandler(authService)
	chatHandler := NewChatHandler(chatService)
	calendarHandler := NewCalendarHandler(calendarService)

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
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me/intervals", authHandler.UpdateCalendarCredentials)

		// --- Conversation Routes ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", chatHandler.StartSession)
			sessionGroup.GET("", chatHandler.ListSessions)
			sessionGroup.GET("/:sessionId", chatHandler.GetSession)
			sessionGroup.GET("/:sessionId/draft", chatHandler.GetDraft)
			sessionGroup.POST("/:sessionId/messages", chatHandler.SendMessage)
			sessionGroup.POST("/:sessionId/voice", chatHandler.SendVoice)
			sessionGroup.GET("/:sessionId/turns/:index/audio", chatHandler.GetTurnAudio)
		}

		// --- Calendar Routes (read-only) ---
		calendarGroup := protected.Group("/calendar")
		{
			calendarGroup.GET("/events", calendarHandler.ListEvents)
			calendarGroup.GET("/activities", calendarHandler.ListActivities)
			calendarGroup.GET("/activities/:activityId/streams", calendarHandler.GetActivityStreams)
			calendarGroup.GET("/replace-runs", calendarHandler.ListReplaceRuns)
		}
	}
}
