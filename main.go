package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/cms-be/internal/api"
	"github.com/isdelr/cms-be/internal/auth"
	"github.com/isdelr/cms-be/internal/backup"
	"github.com/isdelr/cms-be/internal/config"
	"github.com/isdelr/cms-be/internal/database"
	"github.com/isdelr/cms-be/internal/logger"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/monitoring"
	"github.com/isdelr/cms-be/internal/provision"
	"github.com/isdelr/cms-be/internal/scheduler"
	"github.com/isdelr/cms-be/internal/services"
	"github.com/isdelr/cms-be/internal/store"
	"github.com/isdelr/cms-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	// Ensure the backup directory exists
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create backup directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	st := store.NewSQLiteStore(db)
	if _, err := provision.Run(context.Background(), st, models.Tables()); err != nil {
		log.Fatal().Err(err).Msg("Failed to provision tables")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(hub, 100)
	userService := services.NewUserService(st)
	tagService := services.NewTagService(st)
	commentService := services.NewCommentService(st, eventService)
	postService := services.NewPostService(st, tagService, commentService, eventService)

	job := backup.NewJob(st, backup.Options{
		Table:      models.PostsTable,
		Dir:        cfg.BackupDir,
		MaxRecords: cfg.BackupMaxRecords,
		Retention:  cfg.BackupRetention,
	})
	backupService := services.NewBackupService(job, eventService)

	// Set up and run the background volume watcher
	volumeWatcher := monitoring.NewVolumeWatcher(cfg.BackupDir, eventService)
	go volumeWatcher.Run()

	// Set up and run the background scheduler
	var sched *scheduler.Scheduler
	if cfg.BackupSchedule != "" {
		sched, err = scheduler.New(cfg.BackupSchedule, backupService, 5*time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup scheduler")
		}
		sched.Run()
		log.Info().Str("schedule", cfg.BackupSchedule).Time("next_run", sched.Next()).Msg("Backup scheduler enabled")
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:            hub,
		Tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Users:          userService,
		Posts:          postService,
		Comments:       commentService,
		Tags:           tagService,
		Backups:        backupService,
		Events:         eventService,
		Volume:         volumeWatcher,
		BackupDir:      cfg.BackupDir,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	volumeWatcher.Stop() // Stop the monitoring service
	if sched != nil {
		sched.Stop() // Stop the scheduler
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
