package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	exporthandler "github.com/FACorreiaa/po-export/internal/domain/export/handler"
	exportservice "github.com/FACorreiaa/po-export/internal/domain/export/service"
	"github.com/FACorreiaa/po-export/internal/domain/extract"
	"github.com/FACorreiaa/po-export/internal/domain/parser"
	"github.com/FACorreiaa/po-export/internal/domain/vendor"
	"github.com/FACorreiaa/po-export/pkg/config"
	"github.com/FACorreiaa/po-export/pkg/cron"
	"github.com/FACorreiaa/po-export/pkg/metrics"
	"github.com/FACorreiaa/po-export/pkg/middleware"
	"github.com/FACorreiaa/po-export/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Extractor *extract.PdftotextExtractor
	Profiles  *vendor.Registry
	Parsers   *parser.Registry

	FileStorage storage.Storage
	Scheduler   *cron.Scheduler
	RateLimiter *middleware.RateLimiter

	ExportService *exportservice.ExportService
	ExportHandler *exporthandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initPipeline(); err != nil {
		return nil, fmt.Errorf("failed to init pipeline: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initPipeline builds the extraction and parsing stages.
func (d *Dependencies) initPipeline() error {
	d.Extractor = extract.NewPdftotextExtractor(
		d.Config.Extraction.PdftotextPath,
		time.Duration(d.Config.Extraction.TimeoutSeconds)*time.Second,
	)
	if !d.Extractor.Available() {
		d.Logger.Warn("pdftotext binary not found, exports will fail until it is installed",
			slog.String("path", d.Config.Extraction.PdftotextPath),
		)
	}

	profiles, err := vendor.Load(d.Config.Extraction.ProfilesPath)
	if err != nil {
		return err
	}
	d.Profiles = profiles
	d.Parsers = parser.NewRegistry()

	d.Logger.Info("pipeline initialized", slog.Any("vendors", profiles.Names()))
	return nil
}

// initServices initializes storage, metrics and the export service.
func (d *Dependencies) initServices() error {
	d.Registry = prometheus.NewRegistry()
	d.Metrics = metrics.New(d.Registry)

	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.Scheduler = cron.NewScheduler(
		d.FileStorage,
		time.Duration(d.Config.Storage.RetentionTTL)*time.Hour,
		d.Logger,
	)

	d.RateLimiter = middleware.NewRateLimiter(
		float64(d.Config.Server.RateLimitPerSecond),
		d.Config.Server.RateLimitBurst,
	)

	d.ExportService = exportservice.NewExportService(
		d.Extractor,
		d.Profiles,
		d.Parsers,
		d.Config.Resolver.Threshold,
		d.Metrics,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ExportHandler = exporthandler.New(
		d.ExportService,
		d.FileStorage,
		d.Extractor,
		d.Config.Server.MaxUploadBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
}
