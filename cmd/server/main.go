package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveydq/internal/config"
	"surveydq/internal/handler"
	"surveydq/internal/logger"
	"surveydq/internal/port"
	"surveydq/internal/profile"
	"surveydq/internal/repository/postgres"
	"surveydq/internal/router"
	"surveydq/internal/service"
	s3storage "surveydq/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	prof := profile.Default()
	if cfg.Validation.ProfilePath != "" {
		if prof, err = profile.Load(cfg.Validation.ProfilePath); err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
	}

	// Run history and report archive are optional.
	var runRepo port.RunRepository
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(context.Background(), &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		runRepo = postgres.NewRunRepo(db)
	}

	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		if storage, err = s3storage.NewS3Client(&cfg.S3); err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	runSvc := service.NewValidationService(prof, runRepo, storage, service.Options{
		ParallelSheets: cfg.Validation.ParallelSheets,
		MaxWorkers:     cfg.Validation.MaxWorkers,
		PresignExpiry:  cfg.S3.PresignExpiry,
	}, zlog)

	// Initialize handlers
	errs := handler.NewErrorHandler(zlog)
	runH := handler.NewValidationHandler(runSvc, handler.RunDefaults{
		Country:        cfg.Validation.DefaultCountry,
		Language:       cfg.Validation.DefaultLanguage,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
	}, errs)
	profileH := handler.NewProfileHandler(runSvc)
	healthH := handler.NewHealthHandler(runRepo)

	// Setup router
	r := router.Setup(zlog, cfg.CORS.AllowedOrigins, cfg.Server.MaxUploadBytes(), runH, profileH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("profile", prof.Name),
			zap.Bool("history", runRepo != nil),
			zap.Bool("archive", storage != nil))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
