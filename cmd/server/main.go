// @title Student Dashboard API
// @version 1.0
// @description Backend API for the student communication dashboard
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"studentdash-be/config"
	"studentdash-be/internal/database"
	"studentdash-be/internal/handlers"
	"studentdash-be/internal/middleware"
	"studentdash-be/internal/rate"
	"studentdash-be/internal/repository"
	"studentdash-be/internal/services"

	"github.com/gin-gonic/gin"

	_ "studentdash-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongodb.Disconnect()

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database)
	caseNotes := repository.NewCaseNoteRepository(mongodb.Database)

	// Initialize services
	limiter := rate.NewTokenBucket(cfg.StatsProviderRPS)
	defer limiter.Stop()
	gmailService := services.NewGmailService(cfg)
	statsService := services.NewStatsService(cfg, limiter)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo)
	statsHandler := handlers.NewStatisticsHandler(cfg, userRepo, gmailService, statsService)
	caseNoteHandler := handlers.NewCaseNoteHandler(caseNotes)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":   "ok",
				"message":  "Student Dashboard API is running",
				"database": "MongoDB connected",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		// Auth protected routes
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)

		// Statistics routes
		protected.GET("/statistics", statsHandler.GetStatistics)
		protected.GET("/statistics/threads", statsHandler.GetRecentThreads)
		protected.GET("/statistics/keywords/suggest", statsHandler.SuggestKeywords)

		// Case note routes
		protected.POST("/casenotes", caseNoteHandler.CreateCaseNote)
		protected.GET("/casenotes", caseNoteHandler.ListCaseNotes)
		protected.DELETE("/casenotes/:noteId", caseNoteHandler.DeleteCaseNote)
	}

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
