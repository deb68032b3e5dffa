// Package scheduler drives periodic source re-scanning. A single cron entry
// wakes the service, which finds sources whose cadence is due and runs a scan
// job for each.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/scan"
)

const defaultSchedule = "*/30 * * * *"

// Service runs the scan cadence. One sweep runs at a time; an overlapping
// cron tick is dropped rather than queued.
type Service struct {
	storage  interfaces.StorageManager
	ingestor *scan.Ingestor
	jobs     *jobs.Manager
	cron     *cron.Cron
	logger   arbor.ILogger

	mu           sync.Mutex
	isProcessing bool
	running      bool
}

func NewService(storage interfaces.StorageManager, ingestor *scan.Ingestor, jobManager *jobs.Manager, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		ingestor: ingestor,
		jobs:     jobManager,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins the scheduler with the given cron expression.
func (s *Service) Start(cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		cronExpr = defaultSchedule
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runSweep); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", cronExpr).
		Msg("Scan scheduler started")

	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Service) Stop() {
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scan scheduler stopped")
}

func (s *Service) runSweep() {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Debug().Msg("Previous sweep still running, skipping tick")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	if err := s.Sweep(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled sweep failed")
	}
}

// Sweep scans every source whose cadence is due. Per-source failures are
// logged and recorded on the job; the sweep continues with the next source.
func (s *Service) Sweep(ctx context.Context) error {
	sources, err := s.storage.SourceStorage().List(ctx, &interfaces.SourceListOptions{
		Status: models.SourceStatusActive,
	})
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	now := time.Now()
	due := 0
	for _, source := range sources {
		if !source.ScanDue(now) {
			continue
		}
		due++
		if err := s.scanSource(ctx, source); err != nil {
			s.logger.Warn().
				Err(err).
				Str("source_id", source.ID).
				Str("external_id", source.ExternalID).
				Msg("Scheduled scan failed")
		}
	}

	if due > 0 {
		s.logger.Info().
			Int("sources_checked", len(sources)).
			Int("sources_due", due).
			Msg("Sweep completed")
	}

	return nil
}

func (s *Service) scanSource(ctx context.Context, source *models.Source) error {
	active, err := s.jobs.ActiveForTarget(ctx, models.TargetTypeSource, source.ExternalID)
	if err != nil {
		return err
	}
	if active != nil {
		s.logger.Debug().
			Str("source_id", source.ID).
			Str("job_id", active.ID).
			Msg("Scan already in flight, skipping")
		return nil
	}

	parsed, err := scan.ResolveReference(source.ExternalID)
	if err != nil {
		return err
	}

	job, err := s.jobs.Create(ctx, models.JobTypeFetchEpisodes, models.TargetTypeSource, source.ExternalID, jobs.CreateOptions{
		CreatedBy: "scheduler",
	})
	if err != nil {
		return err
	}

	_, err = s.ingestor.Run(ctx, job.ID, parsed, source.ScanFrequency, "scheduler")
	return err
}
