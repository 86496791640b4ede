package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/gate"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/predictor"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/internal/recommend"
	"github.com/XavierBriggs/fortuna/services/prediction-engine/sports/basketball_ncaam"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	config := loadConfig()

	engine, err := predictor.New(basketball_ncaam.EngineConfig())
	if err != nil {
		fmt.Printf("❌ Invalid engine configuration: %v\n", err)
		os.Exit(1)
	}

	recommender := recommend.NewRecommender(basketball_ncaam.RecommenderConfig())
	validationGate := gate.New(basketball_ncaam.GateConfig())

	handler := handlers.NewHandler(engine, recommender, validationGate)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", handler.HealthCheck)
	r.Post("/api/v1/predict", handler.Predict)
	r.Post("/api/v1/recommend", handler.Recommend)

	addr := fmt.Sprintf(":%d", config.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("✓ Prediction API started on port %d\n", config.Port)
		fmt.Printf("  Backend: %s\n", engine.Name())
		fmt.Printf("  Model Version: %s\n", engine.ModelVersion())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("✗ Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n✓ Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("✗ Shutdown error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Prediction API stopped")
}

// Config holds service configuration
type Config struct {
	Port int
}

// loadConfig loads configuration from environment
func loadConfig() Config {
	return Config{
		Port: getEnvInt("PREDICTION_API_PORT", 8087),
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
