package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scanvault/scanvault-be/internal/api"
	"github.com/scanvault/scanvault-be/internal/capture"
	"github.com/scanvault/scanvault-be/internal/config"
	"github.com/scanvault/scanvault-be/internal/database"
	"github.com/scanvault/scanvault-be/internal/decode"
	"github.com/scanvault/scanvault-be/internal/logger"
	"github.com/scanvault/scanvault-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database. The handle is opened once here and threaded
	// through every service.
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	eventService := services.NewEventService(db)
	authService := services.NewAuthService(db, eventService)
	scanService := services.NewScanService(db, eventService)

	// Capture guard and remote decode client
	processor := capture.NewProcessor(scanService)
	decoder := decode.NewClient(cfg.DecodeAPIURL, cfg.DecodeTimeout)

	// Set up router
	router := api.NewRouter(authService, scanService, eventService, processor, decoder)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
