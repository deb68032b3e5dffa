package detect

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
)

// Skip reasons reported on completed-as-skipped detection jobs
const (
	SkipMissingTranscription = "missing_transcription"
	SkipEpisodeProcessing    = "episode_processing"
)

// Runner drives mention detection for one episode: keyword filter over the
// stored transcript, LLM classification of every hit, then an atomic fragment
// replacement. A classification failure aborts the whole run; partial fragment
// sets are never persisted.
type Runner struct {
	storage    interfaces.StorageManager
	classifier interfaces.Classifier
	jobs       *jobs.Manager
	logger     arbor.ILogger
	opts       Options
}

func NewRunner(storage interfaces.StorageManager, classifier interfaces.Classifier, jobManager *jobs.Manager, opts Options, logger arbor.ILogger) *Runner {
	return &Runner{
		storage:    storage,
		classifier: classifier,
		jobs:       jobManager,
		logger:     logger,
		opts:       opts,
	}
}

// StartResult reports how a detection request was dispatched
type StartResult struct {
	JobID      string `json:"job_id"`
	Queued     bool   `json:"queued,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Start validates the episode and creates a process_mentions job for it.
// Without force, an episode already mid-processing or with an active job is
// not reprocessed: the existing job id is returned as queued. An episode with
// no stored transcription gets a job completed immediately as skipped.
// Processing itself happens in Process, which callers run asynchronously.
func (r *Runner) Start(ctx context.Context, episodeID string, force bool, requestedBy string) (*StartResult, error) {
	episode, err := r.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, fmt.Errorf("episode not found: %s", episodeID)
	}

	transcription, err := r.storage.TranscriptionStorage().GetByEpisodeID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if transcription == nil {
		return r.completeSkipped(ctx, episodeID, requestedBy, SkipMissingTranscription)
	}

	if !force {
		if episode.Status == models.EpisodeStatusProcessing {
			return r.completeSkipped(ctx, episodeID, requestedBy, SkipEpisodeProcessing)
		}
		active, err := r.jobs.ActiveForTarget(ctx, models.TargetTypeEpisode, episodeID)
		if err != nil {
			return nil, err
		}
		if active != nil && active.Type == models.JobTypeProcessMentions {
			return &StartResult{JobID: active.ID, Queued: true}, nil
		}
	}

	job, err := r.jobs.Create(ctx, models.JobTypeProcessMentions, models.TargetTypeEpisode, episodeID, jobs.CreateOptions{
		CreatedBy:  requestedBy,
		ItemsTotal: transcription.SegmentCount(),
		Parameters: map[string]interface{}{
			"force": force,
		},
	})
	if err != nil {
		return nil, err
	}

	return &StartResult{JobID: job.ID}, nil
}

func (r *Runner) completeSkipped(ctx context.Context, episodeID, requestedBy, reason string) (*StartResult, error) {
	job, err := r.jobs.Create(ctx, models.JobTypeProcessMentions, models.TargetTypeEpisode, episodeID, jobs.CreateOptions{
		CreatedBy: requestedBy,
	})
	if err != nil {
		return nil, err
	}
	if _, err := r.jobs.Patch(ctx, job.ID, jobs.StatusPatch{
		Status:      models.JobStatusCompleted,
		Progress:    jobs.IntPtr(100),
		CurrentStep: jobs.StrPtr("skipped"),
		Results: map[string]interface{}{
			"skipped": true,
			"reason":  reason,
		},
	}); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("episode_id", episodeID).
		Str("reason", reason).
		Msg("Detection skipped")

	return &StartResult{JobID: job.ID, Skipped: true, SkipReason: reason}, nil
}

// Process executes the detection pipeline for a previously created job. On any
// error the job is failed and the episode moves to error with the same message.
func (r *Runner) Process(ctx context.Context, jobID, episodeID string) error {
	if err := r.process(ctx, jobID, episodeID); err != nil {
		r.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Str("episode_id", episodeID).
			Msg("Detection failed")
		r.jobs.MarkFailed(ctx, jobID, err.Error())
		r.markEpisodeError(ctx, episodeID, err.Error())
		return err
	}
	return nil
}

func (r *Runner) process(ctx context.Context, jobID, episodeID string) error {
	if _, err := r.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:      models.JobStatusRunning,
		CurrentStep: jobs.StrPtr("keyword_filter"),
	}); err != nil {
		return err
	}

	episode, err := r.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil {
		return err
	}
	if episode == nil {
		return fmt.Errorf("episode not found: %s", episodeID)
	}

	transcription, err := r.storage.TranscriptionStorage().GetByEpisodeID(ctx, episodeID)
	if err != nil {
		return err
	}
	if transcription == nil {
		return fmt.Errorf("no transcription stored for episode: %s", episodeID)
	}

	// Mention fields reset up front so a failed run never leaves stale counts.
	episode.Status = models.EpisodeStatusProcessing
	episode.HasMentions = false
	episode.MentionCount = 0
	episode.AverageConfidence = 0
	episode.ProcessingError = ""
	if err := r.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		return err
	}

	keywords, err := r.storage.KeywordStorage().ActiveKeywords(ctx)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		keywords = FallbackKeywords
	}

	matches := DetectMatches(transcription.Segments, keywords, r.opts)
	if len(matches) == 0 {
		return r.completeNoMatches(ctx, jobID, episode)
	}

	if _, err := r.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:      models.JobStatusRunning,
		CurrentStep: jobs.StrPtr("llm_classification"),
		ItemsTotal:  jobs.IntPtr(len(matches)),
	}); err != nil {
		return err
	}

	now := time.Now().UTC()
	fragments := make([]*models.Fragment, 0, len(matches))
	confidenceSum := 0

	for i, match := range matches {
		classification, err := r.classifier.ClassifyFragment(ctx, &interfaces.ClassificationInput{
			FragmentText: match.MatchedText,
			ContextText:  match.ContextText,
			Keywords:     match.MatchedKeywords,
			Language:     episode.Language,
		})
		if err != nil {
			return fmt.Errorf("classification failed at fragment %d of %d: %w", i+1, len(matches), err)
		}

		startTime := int(match.StartTime)
		fragments = append(fragments, &models.Fragment{
			EpisodeID:       episode.ID,
			TranscriptionID: transcription.ID,
			VideoID:         episode.VideoID,
			Text:            match.MatchedText,
			Context:         match.ContextText,
			StartTime:       startTime,
			EndTime:         int(match.EndTime),
			MatchedKeywords: match.MatchedKeywords,
			WatchURL:        watchURL(episode.VideoID, startTime),
			Classification:  *classification,
			ConfidenceScore: classification.Confidence,
			DetectedBy:      models.DetectedByLLMClassifier,
			DetectedAt:      now,
			ReviewStatus:    models.ReviewStatusPending,
		})
		confidenceSum += classification.Confidence

		progress := (i + 1) * 100 / len(matches)
		if progress > 99 {
			progress = 99
		}
		if _, err := r.jobs.Patch(ctx, jobID, jobs.StatusPatch{
			Status:         models.JobStatusRunning,
			ItemsProcessed: jobs.IntPtr(i + 1),
			Progress:       jobs.IntPtr(progress),
		}); err != nil {
			return err
		}
	}

	if err := r.storage.FragmentStorage().ReplaceForEpisode(ctx, episodeID, fragments); err != nil {
		return err
	}

	avgConfidence := int(math.Round(float64(confidenceSum) / float64(len(fragments))))

	episode.Status = models.EpisodeStatusCompleted
	episode.HasBeenProcessed = true
	episode.HasMentions = true
	episode.MentionCount = len(fragments)
	episode.AverageConfidence = avgConfidence
	episode.ProcessedAt = &now
	if err := r.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		return err
	}

	if _, err := r.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:         models.JobStatusCompleted,
		Progress:       jobs.IntPtr(100),
		ItemsProcessed: jobs.IntPtr(len(fragments)),
		CurrentStep:    jobs.StrPtr("completed"),
		Results: map[string]interface{}{
			"mention_count":      len(fragments),
			"average_confidence": avgConfidence,
		},
	}); err != nil {
		return err
	}

	r.logger.Info().
		Str("job_id", jobID).
		Str("episode_id", episodeID).
		Int("mentions", len(fragments)).
		Int("average_confidence", avgConfidence).
		Msg("Detection completed")

	return nil
}

func (r *Runner) completeNoMatches(ctx context.Context, jobID string, episode *models.Episode) error {
	if err := r.storage.FragmentStorage().DeleteForEpisode(ctx, episode.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	episode.Status = models.EpisodeStatusCompleted
	episode.HasBeenProcessed = true
	episode.HasMentions = false
	episode.MentionCount = 0
	episode.AverageConfidence = 0
	episode.ProcessedAt = &now
	if err := r.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		return err
	}

	if _, err := r.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:      models.JobStatusCompleted,
		Progress:    jobs.IntPtr(100),
		CurrentStep: jobs.StrPtr("no_matches"),
		Results: map[string]interface{}{
			"mention_count": 0,
		},
	}); err != nil {
		return err
	}

	r.logger.Info().
		Str("episode_id", episode.ID).
		Msg("Detection completed with no matches")

	return nil
}

func (r *Runner) markEpisodeError(ctx context.Context, episodeID, message string) {
	episode, err := r.storage.EpisodeStorage().GetByID(ctx, episodeID)
	if err != nil || episode == nil {
		return
	}
	episode.Status = models.EpisodeStatusError
	episode.ProcessingError = message
	if err := r.storage.EpisodeStorage().Update(ctx, episode); err != nil {
		r.logger.Warn().
			Err(err).
			Str("episode_id", episodeID).
			Msg("Failed to record episode error")
	}
}

func watchURL(videoID string, startSeconds int) string {
	return "https://www.youtube.com/watch?v=" + videoID + "&t=" + strconv.Itoa(startSeconds) + "s"
}
