// Package app wires configuration, storage, external clients, services, and
// handlers into one application container.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/handlers"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/services/detect"
	"github.com/ternarybob/ausculto/internal/services/feedback"
	"github.com/ternarybob/ausculto/internal/services/llm"
	"github.com/ternarybob/ausculto/internal/services/scan"
	"github.com/ternarybob/ausculto/internal/services/scheduler"
	"github.com/ternarybob/ausculto/internal/services/transcribe"
	badgerstorage "github.com/ternarybob/ausculto/internal/storage/badger"
	"github.com/ternarybob/ausculto/internal/transcript"
	"github.com/ternarybob/ausculto/internal/youtube"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// External clients
	MetadataClient   interfaces.MetadataClient
	TranscriptClient interfaces.TranscriptClient
	ProviderFactory  *llm.ProviderFactory

	// Services
	JobManager       *jobs.Manager
	Ingestor         *scan.Ingestor
	Detector         *detect.Runner
	TranscribeSvc    *transcribe.Service
	FeedbackSvc      *feedback.Service
	SchedulerService *scheduler.Service

	// Handlers
	ScanHandler     *handlers.ScanHandler
	EpisodeHandler  *handlers.EpisodeHandler
	FeedbackHandler *handlers.FeedbackHandler
	JobHandler      *handlers.JobHandler
	KeywordHandler  *handlers.KeywordHandler
	SourceHandler   *handlers.SourceHandler
	StatusHandler   *handlers.StatusHandler
}

// New creates and wires the application.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if bm, ok := storageManager.(*badgerstorage.Manager); ok && config.Keywords.SeedFile != "" {
		if err := bm.LoadKeywordsFromFile(context.Background(), config.Keywords.SeedFile); err != nil {
			logger.Warn().Err(err).Str("file", config.Keywords.SeedFile).Msg("Keyword seed load failed")
		}
	}

	clientOpts := []youtube.ClientOption{youtube.WithLogger(logger)}
	if config.YouTube.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, youtube.WithRateLimit(config.YouTube.RequestsPerSecond))
	}
	metadataClient := youtube.NewClient(config.YouTube.APIKey, clientOpts...)
	transcriptClient := transcript.NewClient(config.Transcript, logger)
	providerFactory := llm.NewProviderFactory(config, logger)
	classifier := llm.NewClassifier(providerFactory, config, logger)

	jobManager := jobs.NewManager(storageManager, logger)
	ingestor := scan.NewIngestor(storageManager, metadataClient, jobManager, config.YouTube, logger)
	detector := detect.NewRunner(storageManager, classifier, jobManager, detect.Options{
		WindowSeconds: config.Detection.WindowSeconds,
		MaxMatches:    config.Detection.MaxMatches,
	}, logger)
	transcribeSvc := transcribe.NewService(storageManager, transcriptClient, jobManager, logger)
	feedbackSvc := feedback.NewService(storageManager, logger)
	schedulerService := scheduler.NewService(storageManager, ingestor, jobManager, logger)

	app := &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		MetadataClient:   metadataClient,
		TranscriptClient: transcriptClient,
		ProviderFactory:  providerFactory,
		JobManager:       jobManager,
		Ingestor:         ingestor,
		Detector:         detector,
		TranscribeSvc:    transcribeSvc,
		FeedbackSvc:      feedbackSvc,
		SchedulerService: schedulerService,

		ScanHandler:     handlers.NewScanHandler(ingestor, jobManager, logger),
		EpisodeHandler:  handlers.NewEpisodeHandler(storageManager, detector, transcribeSvc, logger),
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackSvc, logger),
		JobHandler:      handlers.NewJobHandler(jobManager, logger),
		KeywordHandler:  handlers.NewKeywordHandler(storageManager, logger),
		SourceHandler:   handlers.NewSourceHandler(storageManager, logger),
		StatusHandler:   handlers.NewStatusHandler(storageManager, logger),
	}

	if config.Scheduler.Enabled {
		if err := schedulerService.Start(config.Scheduler.Schedule); err != nil {
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("scheduler", config.Scheduler.Enabled).
		Msg("Application initialized")

	return app, nil
}

// Close shuts down services and storage in reverse initialization order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.ProviderFactory != nil {
		_ = a.ProviderFactory.Close()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	a.Logger.Info().Msg("Application shut down")
	return nil
}
