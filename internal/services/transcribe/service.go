package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
)

// Service fetches transcripts for episodes through the extraction client and
// stores them as the episode's transcription. Each fetch wholesale-replaces
// any prior transcription record.
type Service struct {
	storage interfaces.StorageManager
	client  interfaces.TranscriptClient
	jobs    *jobs.Manager
	logger  arbor.ILogger
}

func NewService(storage interfaces.StorageManager, client interfaces.TranscriptClient, jobManager *jobs.Manager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		client:  client,
		jobs:    jobManager,
		logger:  logger,
	}
}

// StartResult reports how a transcript-fetch request was dispatched
type StartResult struct {
	JobID  string `json:"job_id"`
	Queued bool   `json:"queued,omitempty"`
}

// Start creates a fetch_transcription job for the episode. Without force, an
// already-active fetch for the same episode is returned instead of starting
// a second one.
func (s *Service) Start(ctx context.Context, episodeID string, force bool, requestedBy string) (*StartResult, error) {
	episode, err := s.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, fmt.Errorf("episode not found: %s", episodeID)
	}

	if !force {
		active, err := s.jobs.ActiveForTarget(ctx, models.TargetTypeEpisode, episodeID)
		if err != nil {
			return nil, err
		}
		if active != nil && active.Type == models.JobTypeFetchTranscription {
			return &StartResult{JobID: active.ID, Queued: true}, nil
		}
	}

	job, err := s.jobs.Create(ctx, models.JobTypeFetchTranscription, models.TargetTypeEpisode, episodeID, jobs.CreateOptions{
		CreatedBy: requestedBy,
		Parameters: map[string]interface{}{
			"video_id": episode.VideoID,
			"force":    force,
		},
	})
	if err != nil {
		return nil, err
	}

	return &StartResult{JobID: job.ID}, nil
}

// Process fetches and stores the transcript for a previously created job.
// A video with no transcript completes the job as unavailable and marks the
// episode skipped; only transport and storage failures fail the job.
func (s *Service) Process(ctx context.Context, jobID, episodeID string) error {
	if err := s.process(ctx, jobID, episodeID); err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Str("episode_id", episodeID).
			Msg("Transcript fetch failed")
		s.jobs.MarkFailed(ctx, jobID, err.Error())
		s.markEpisodeError(ctx, episodeID, err.Error())
		return err
	}
	return nil
}

func (s *Service) process(ctx context.Context, jobID, episodeID string) error {
	if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:      models.JobStatusRunning,
		CurrentStep: jobs.StrPtr("fetch_transcript"),
	}); err != nil {
		return err
	}

	episode, err := s.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode == nil {
		return fmt.Errorf("episode not found: %s", episodeID)
	}

	episode.Status = models.EpisodeStatusTranscribing
	episode.TranscriptionError = ""
	if err := s.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		return err
	}

	result, err := s.client.FetchTranscript(ctx, episode.VideoID)
	if err != nil {
		return fmt.Errorf("transcript fetch for video %s: %w", episode.VideoID, err)
	}

	now := time.Now().UTC()
	if result == nil {
		episode.Status = models.EpisodeStatusSkipped
		episode.HasTranscription = false
		episode.TranscriptionError = "no transcript available"
		episode.TranscriptionFetchedAt = &now
		if err := s.storage.EpisodeStorage().Update(ctx, episode); err != nil {
			return err
		}
		if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
			Status:      models.JobStatusCompleted,
			Progress:    jobs.IntPtr(100),
			CurrentStep: jobs.StrPtr("no_transcript"),
			Results: map[string]interface{}{
				"available": false,
			},
		}); err != nil {
			return err
		}

		s.logger.Info().
			Str("episode_id", episodeID).
			Str("video_id", episode.VideoID).
			Msg("No transcript available")
		return nil
	}

	if err := s.storage.TranscriptionStorage().Replace(ctx, &models.Transcription{
		EpisodeID: episode.ID,
		VideoID:   episode.VideoID,
		Language:  result.Language,
		Segments:  result.Segments,
		FetchedAt: now,
	}); err != nil {
		return err
	}

	episode.Status = models.EpisodeStatusDiscovered
	episode.HasTranscription = true
	episode.TranscriptionFetchedAt = &now
	if result.Language != "" {
		episode.Language = result.Language
	}
	if err := s.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		return err
	}

	if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:         models.JobStatusCompleted,
		Progress:       jobs.IntPtr(100),
		ItemsProcessed: jobs.IntPtr(len(result.Segments)),
		CurrentStep:    jobs.StrPtr("completed"),
		Results: map[string]interface{}{
			"available":     true,
			"segment_count": len(result.Segments),
			"run_id":        result.RunID,
		},
	}); err != nil {
		return err
	}

	s.logger.Info().
		Str("episode_id", episodeID).
		Str("video_id", episode.VideoID).
		Int("segments", len(result.Segments)).
		Msg("Transcript stored")

	return nil
}

func (s *Service) markEpisodeError(ctx context.Context, episodeID, message string) {
	episode, err := s.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil || episode == nil {
		return
	}
	episode.Status = models.EpisodeStatusError
	episode.TranscriptionError = message
	if err := s.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		s.logger.Warn().
			Err(err).
			Str("episode_id", episodeID).
			Msg("Failed to record episode error")
	}
}
