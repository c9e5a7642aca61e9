package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/poplarplanet/SmileWritingQuiz/internal/config"
	"github.com/poplarplanet/SmileWritingQuiz/internal/forms"
	"github.com/poplarplanet/SmileWritingQuiz/internal/report"
	"github.com/poplarplanet/SmileWritingQuiz/internal/session"
	"github.com/poplarplanet/SmileWritingQuiz/internal/sheet"
	"github.com/poplarplanet/SmileWritingQuiz/pkg/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg := config.Load()

	// Initialize random seed for option shuffling
	rand.Seed(time.Now().UnixNano())

	// Local persistence
	userStore := store.NewRedisStore(cfg.RedisAddr)

	// External interface clients
	sheetClient := sheet.NewClient(nil, cfg.SheetExportURL)
	formsClient := forms.NewClient(nil, cfg.UserFormURL, cfg.ResultFormURL, cfg.WrongAnswerFormURL)

	// Background result reporter
	reporter := report.NewReporter(userStore, formsClient)
	go reporter.Run()

	// Session state machine and handlers
	sessionService := session.NewService(sheetClient, userStore, reporter)
	sessionHandler := session.NewHandler(sessionService)

	// Setup router
	router := mux.NewRouter()
	sessionHandler.RegisterRoutes(router)

	// CORS middleware configuration
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", session.TokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	reporter.Close()
	log.Println("Server shutdown gracefully")
}
