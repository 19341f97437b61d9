package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/handler"
	"xperto/internal/inference"
	"xperto/internal/inference/providers"
	"xperto/internal/logging"
	"xperto/internal/pdfexport"
	"xperto/internal/port"
	"xperto/internal/report"
	"xperto/internal/router"
	"xperto/internal/service"
	s3storage "xperto/internal/storage/s3"
	"xperto/internal/upload"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize upstream client
	providers.RegisterAll()
	client, err := inference.NewClient(&cfg.Upstream, inference.Deps{Logger: logger.Named("inference")})
	if err != nil {
		return fmt.Errorf("failed to initialize %s upstream: %w", cfg.Upstream.Mode, err)
	}

	// Initialize optional report storage
	var storage port.ObjectStorage
	if cfg.Storage.Enabled() {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s3Client
	}

	// Initialize services
	encoder := upload.NewEncoder(cfg.Upload)
	analysisSvc := service.NewAnalysisService(encoder, client, logger.Named("analysis"))
	exportSvc := service.NewExportService(
		pdfexport.NewExporter(pdfexport.WithCompression(cfg.Export.Compress)),
		storage,
		&cfg.Storage,
		logger.Named("export"),
	)

	tmpl, err := report.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	// Setup router
	r := router.Setup(cfg, logger.Named("http"), tmpl, router.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisSvc),
		Export:   handler.NewExportHandler(exportSvc),
		Page:     handler.NewPageHandler(analysisSvc, cfg.Upload.MaxFiles),
		Health:   handler.NewHealthHandler(cfg.Upstream.Mode),
	}, exportSvc.StorageEnabled())

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("upstream", cfg.Upstream.Mode),
			zap.Bool("storage", storage != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
