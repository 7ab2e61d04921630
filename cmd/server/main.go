package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Serena-AI862/Serena/docs"
	"github.com/Serena-AI862/Serena/internal/config"
	"github.com/Serena-AI862/Serena/internal/database"
	"github.com/Serena-AI862/Serena/internal/handlers"
	mW "github.com/Serena-AI862/Serena/internal/middleware"
	"github.com/Serena-AI862/Serena/internal/services"
	"github.com/Serena-AI862/Serena/internal/store"
)

// @title Serena Call Analytics API
// @version 1.0
// @description API for the Serena real estate call analytics dashboard
// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Serena Call Analytics API"
	docs.SwaggerInfo.Description = "API for the Serena real estate call analytics dashboard"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	defer redisClient.Close()

	st := store.New(db)
	ctx := context.Background()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	if err := st.SeedDemoData(ctx); err != nil {
		log.Printf("Warning: Failed to seed demo data: %v", err)
	}

	sessionConfig := config.LoadSessionConfig()
	sessionService := services.NewSessionService(redisClient, sessionConfig)
	authService := services.NewAuthService(st, sessionService, redisClient, sessionConfig)
	statsService := services.NewStatsService(st)
	transcriptionService := services.NewTranscriptionService()
	defer transcriptionService.Close()

	dashboardHandler := handlers.NewDashboardHandler(st, statsService)

	// Initialize auth middleware with the session service
	mW.InitAuthMiddleware(sessionService)

	// Periodically purge expired reset tokens. Sessions expire on their own
	// through Redis TTLs.
	go func() {
		ticker := time.NewTicker(sessionConfig.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := st.ClearExpiredResetTokens(context.Background()); err != nil {
				log.Printf("[SWEEP] Failed to clear expired reset tokens: %v", err)
			} else if n > 0 {
				log.Printf("[SWEEP] Cleared %d expired reset tokens", n)
			}
		}
	}()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/register", authService.Register)
		r.Post("/login", authService.Login)
		r.Post("/logout", authService.Logout)
		r.Post("/request-password-reset", authService.RequestPasswordReset)
		r.Post("/reset-password", authService.ResetPassword)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/user", authService.CurrentUser)

			r.Get("/calls", dashboardHandler.GetCalls)
			r.Post("/calls", dashboardHandler.CreateCall)
			r.Post("/calls/transcribe", transcriptionService.TranscribeCall)

			r.Get("/stats", dashboardHandler.GetStats)
			r.Get("/dashboard", dashboardHandler.GetDashboard)
		})
	})

	// Built dashboard frontend; everything not matched above falls through here
	r.NotFound(mW.StaticFileServer("./static/app").ServeHTTP)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
