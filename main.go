
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"quizdeck-server/config"
	"quizdeck-server/db"
	"quizdeck-server/handlers"
	"quizdeck-server/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	// Initialize database connection pool
	pool, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	// Ensure database schema is set up (simple creation for demo)
	if err := db.CreateSchema(pool); err != nil {
		log.Fatalf("Error creating database schema: %v", err)
	}
	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	// Initialize Gin router
	router := gin.Default()
	// Load HTML templates for admin UI
	renderer := multitemplate.NewRenderer()
	renderer.AddFromFiles("admin_dashboard", "templates/layout.html", "templates/admin_dashboard.html")
	renderer.AddFromFiles("admin_error_logs", "templates/layout.html", "templates/admin_error_logs.html")
	router.HTMLRender = renderer
	// Middleware
	router.Use(middleware.Logger()) // Custom logger middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// JWT authentication middleware for API and Admin routes
	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	// Dashboard metrics cache, refreshed by a background job
	dashboardCache := handlers.NewDashboardCache()
	// API Routes (version 1)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware) // Apply auth to all API routes
	{
		apiV1.GET("/quizzes", handlers.ListQuizzes(pool))
		apiV1.GET("/quizzes/:quiz_id", handlers.GetQuiz(pool))
		apiV1.POST("/quizzes/:quiz_id/attempts", handlers.SubmitAttempt(pool))
		apiV1.GET("/users/:email/attempts", handlers.GetUserAttempts(pool))
	}
	// Admin Routes
	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.Use(middleware.RoleCheckMiddleware([]string{"admin", "instructor"})) // Role-based access control for admin routes
	{
		admin.GET("/dashboard", handlers.AdminDashboard(pool, dashboardCache))
		admin.GET("/error_logs", handlers.AdminErrorLogs(pool))
		admin.GET("/analytics", handlers.AdminAnalytics(pool))
		admin.POST("/quizzes", handlers.AdminCreateQuiz(pool))
		admin.POST("/quizzes/upload", handlers.AdminUploadQuiz(pool))
		admin.POST("/quizzes/ingest/:slug", handlers.AdminIngestBundle(pool, cfg.BundlePath))
		admin.POST("/attempts/:attempt_id/regrade", handlers.AdminRegradeAttempt(pool))
	}
	// Start background job to keep dashboard aggregates warm
	go func() {
		ticker := time.NewTicker(cfg.AnalyticsWarmEvery)
		defer ticker.Stop()
		for range ticker.C {
			if err := dashboardCache.Refresh(pool); err != nil {
				log.Printf("Error refreshing dashboard metrics: %v", err)
			}
		}
	}()
	// Start the server
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}
	// Goroutine to gracefully shut down the server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()
	log.Printf("QuizDeck Server starting on %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}
