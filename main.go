package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrLotU/user-profile-be/internal/api"
	"github.com/MrLotU/user-profile-be/internal/auth"
	"github.com/MrLotU/user-profile-be/internal/config"
	"github.com/MrLotU/user-profile-be/internal/database"
	"github.com/MrLotU/user-profile-be/internal/logger"
	"github.com/MrLotU/user-profile-be/internal/services"
	"github.com/MrLotU/user-profile-be/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up picture storage
	pictures, err := storage.NewPictureStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize picture storage: %v", err)
	}

	// Set up services
	accountService := services.NewAccountService(db)
	profileService := services.NewProfileService(db)
	eventService := services.NewEventService(db)

	// Set up session tokens
	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL, accountService)

	// Set up router
	router := api.NewRouter(tokens, accountService, profileService, eventService, pictures)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
