// Package scan ingests episodes from registered sources: it resolves a
// source reference against the metadata API, upserts the source and its
// episodes, and tracks progress on the owning scan job.
package scan

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/youtube"
)

const (
	// MaxPages bounds how many listing pages one scan consumes.
	MaxPages = 3

	// PageSize is the listing page size requested from the metadata API.
	PageSize = 50

	// MinDurationSeconds filters out shorts and trailers. Videos with an
	// unknown (zero) duration are kept.
	MinDurationSeconds = 120
)

// Ingestor runs episode ingestion scans.
type Ingestor struct {
	storage  interfaces.StorageManager
	client   interfaces.MetadataClient
	jobs     *jobs.Manager
	logger   arbor.ILogger
	maxPages int
	pageSize int
	minDur   int
}

// NewIngestor creates an ingestor. Zero-valued config fields fall back to
// the package constants.
func NewIngestor(storage interfaces.StorageManager, client interfaces.MetadataClient, jobManager *jobs.Manager, cfg common.YouTubeConfig, logger arbor.ILogger) *Ingestor {
	maxPages := cfg.MaxPagesPerScan
	if maxPages <= 0 {
		maxPages = MaxPages
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = PageSize
	}
	minDur := cfg.MinEpisodeDurationSec
	if minDur <= 0 {
		minDur = MinDurationSeconds
	}

	return &Ingestor{
		storage:  storage,
		client:   client,
		jobs:     jobManager,
		logger:   logger,
		maxPages: maxPages,
		pageSize: pageSize,
		minDur:   minDur,
	}
}

var (
	channelIDRef = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
	playlistRef  = regexp.MustCompile(`^(?:PL|UU|OL|FL)[a-zA-Z0-9_-]+$`)
	videoIDRef   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ResolveReference turns a source reference (URL or bare identifier) into a
// parsed target. Bare references are classified by shape: canonical channel
// ids, playlist ids, 11-character video ids, @handles; anything else is
// treated as a legacy username.
func ResolveReference(ref string) (*youtube.ParsedURL, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return nil, fmt.Errorf("source reference is required")
	}

	if parsed := youtube.ParseURL(trimmed); parsed != nil {
		return parsed, nil
	}

	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return nil, fmt.Errorf("unrecognized source URL: %s", ref)
	}

	switch {
	case channelIDRef.MatchString(trimmed):
		return &youtube.ParsedURL{Type: "channel", ID: trimmed, OriginalURL: "https://www.youtube.com/channel/" + trimmed}, nil
	case playlistRef.MatchString(trimmed):
		return &youtube.ParsedURL{Type: "playlist", ID: trimmed, OriginalURL: "https://www.youtube.com/playlist?list=" + trimmed}, nil
	case strings.HasPrefix(trimmed, "@"):
		return &youtube.ParsedURL{Type: "channel", ID: strings.TrimPrefix(trimmed, "@"), OriginalURL: "https://www.youtube.com/" + trimmed, DisplayName: trimmed}, nil
	case videoIDRef.MatchString(trimmed):
		return &youtube.ParsedURL{Type: "video", ID: trimmed, OriginalURL: "https://www.youtube.com/watch?v=" + trimmed}, nil
	default:
		return &youtube.ParsedURL{Type: "channel", ID: trimmed, OriginalURL: "https://www.youtube.com/c/" + trimmed, DisplayName: trimmed}, nil
	}
}

// Summary reports one scan's outcome.
type Summary struct {
	SourceID          string `json:"source_id"`
	SourceType        string `json:"source_type"`
	EpisodesProcessed int    `json:"episodes_processed"`
	NewEpisodes       int    `json:"new_episodes"`
	UpdatedEpisodes   int    `json:"updated_episodes"`
	SkippedEpisodes   int    `json:"skipped_episodes"`
}

// Run executes a scan under the given job: resolves the target, upserts the
// source and episodes, and drives the job to completed or failed. LastScanAt
// is stamped on completion regardless of per-episode outcomes.
func (s *Ingestor) Run(ctx context.Context, jobID string, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*Summary, error) {
	if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:      models.JobStatusRunning,
		CurrentStep: jobs.StrPtr("fetch_episodes"),
	}); err != nil {
		return nil, err
	}

	var summary *Summary
	var err error

	switch parsed.Type {
	case "channel":
		summary, err = s.processChannel(ctx, jobID, parsed, frequency, requestedBy)
	case "playlist":
		summary, err = s.processPlaylist(ctx, jobID, parsed, frequency, requestedBy)
	case "video":
		summary, err = s.processVideo(ctx, jobID, parsed, frequency, requestedBy)
	default:
		err = fmt.Errorf("unsupported source type: %s", parsed.Type)
	}

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Str("reference", parsed.OriginalURL).
			Msg("Scan failed")
		s.jobs.MarkFailed(ctx, jobID, err.Error())
		return nil, err
	}

	if _, patchErr := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:         models.JobStatusCompleted,
		Progress:       jobs.IntPtr(100),
		ItemsProcessed: jobs.IntPtr(summary.EpisodesProcessed),
		CurrentStep:    jobs.StrPtr("completed"),
		Results: map[string]interface{}{
			"source_id":          summary.SourceID,
			"source_type":        summary.SourceType,
			"episodes_processed": summary.EpisodesProcessed,
			"new_episodes":       summary.NewEpisodes,
			"updated_episodes":   summary.UpdatedEpisodes,
			"skipped_episodes":   summary.SkippedEpisodes,
		},
	}); patchErr != nil {
		return nil, patchErr
	}

	s.logger.Info().
		Str("job_id", jobID).
		Str("source_id", summary.SourceID).
		Int("new", summary.NewEpisodes).
		Int("updated", summary.UpdatedEpisodes).
		Int("skipped", summary.SkippedEpisodes).
		Msg("Scan completed")

	return summary, nil
}

func (s *Ingestor) processChannel(ctx context.Context, jobID string, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*Summary, error) {
	channel, err := s.client.GetChannel(ctx, parsed.ID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, fmt.Errorf("channel not found: %s", parsed.ID)
	}

	source, err := s.upsertChannelSource(ctx, channel, parsed, frequency, requestedBy)
	if err != nil {
		return nil, err
	}

	summary := &Summary{SourceID: source.ID, SourceType: "channel"}
	if err := s.ingestPages(ctx, jobID, source, summary, func(pageToken string) (*interfaces.VideoPage, error) {
		return s.client.GetChannelVideos(ctx, channel.ID, s.pageSize, pageToken)
	}); err != nil {
		return nil, err
	}

	if err := s.storage.SourceStorage().MarkScanned(ctx, source.ID); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Ingestor) processPlaylist(ctx context.Context, jobID string, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*Summary, error) {
	playlist, err := s.client.GetPlaylist(ctx, parsed.ID)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist not found: %s", parsed.ID)
	}

	source, err := s.upsertPlaylistSource(ctx, playlist, parsed, frequency, requestedBy)
	if err != nil {
		return nil, err
	}

	summary := &Summary{SourceID: source.ID, SourceType: "playlist"}
	if err := s.ingestPages(ctx, jobID, source, summary, func(pageToken string) (*interfaces.VideoPage, error) {
		return s.client.GetPlaylistVideos(ctx, playlist.ID, s.pageSize, pageToken)
	}); err != nil {
		return nil, err
	}

	if err := s.storage.SourceStorage().MarkScanned(ctx, source.ID); err != nil {
		return nil, err
	}
	return summary, nil
}

// processVideo registers a single video by resolving its parent channel as
// the source and ingesting just that episode.
func (s *Ingestor) processVideo(ctx context.Context, jobID string, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*Summary, error) {
	video, err := s.client.GetVideo(ctx, parsed.ID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("video not found: %s", parsed.ID)
	}

	channel, err := s.client.GetChannel(ctx, video.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, fmt.Errorf("parent channel not found: %s", video.ChannelID)
	}

	source, err := s.upsertChannelSource(ctx, channel, &youtube.ParsedURL{
		Type:        "channel",
		ID:          channel.ID,
		OriginalURL: "https://www.youtube.com/channel/" + channel.ID,
		DisplayName: channel.Title,
	}, frequency, requestedBy)
	if err != nil {
		return nil, err
	}

	summary := &Summary{SourceID: source.ID, SourceType: "video"}
	outcome, err := s.saveEpisode(ctx, source, video)
	if err != nil {
		return nil, err
	}
	summary.apply(outcome)

	if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
		Status:         models.JobStatusRunning,
		ItemsProcessed: jobs.IntPtr(1),
		Progress:       jobs.IntPtr(100),
	}); err != nil {
		return nil, err
	}

	if err := s.storage.SourceStorage().MarkScanned(ctx, source.ID); err != nil {
		return nil, err
	}
	return summary, nil
}

// ingestPages walks listing pages up to the page cap, saving each video and
// reporting progress on the job after every episode.
func (s *Ingestor) ingestPages(ctx context.Context, jobID string, source *models.Source, summary *Summary, fetch func(pageToken string) (*interfaces.VideoPage, error)) error {
	pageToken := ""
	considered := 0

	for page := 0; page < s.maxPages; page++ {
		videoPage, err := fetch(pageToken)
		if err != nil {
			return err
		}

		for _, video := range videoPage.Videos {
			considered++
			outcome, err := s.saveEpisode(ctx, source, video)
			if err != nil {
				return err
			}
			summary.apply(outcome)

			progress := considered * 100 / (s.pageSize * s.maxPages)
			if progress > 99 {
				progress = 99
			}
			if _, err := s.jobs.Patch(ctx, jobID, jobs.StatusPatch{
				Status:         models.JobStatusRunning,
				ItemsProcessed: jobs.IntPtr(considered),
				Progress:       jobs.IntPtr(progress),
			}); err != nil {
				return err
			}
		}

		if videoPage.NextPageToken == "" {
			break
		}
		pageToken = videoPage.NextPageToken
	}

	return nil
}

type episodeOutcome int

const (
	episodeCreated episodeOutcome = iota
	episodeUpdated
	episodeSkipped
)

func (sum *Summary) apply(outcome episodeOutcome) {
	switch outcome {
	case episodeCreated:
		sum.EpisodesProcessed++
		sum.NewEpisodes++
	case episodeUpdated:
		sum.EpisodesProcessed++
		sum.UpdatedEpisodes++
	case episodeSkipped:
		sum.SkippedEpisodes++
	}
}

func (s *Ingestor) saveEpisode(ctx context.Context, source *models.Source, video *interfaces.VideoInfo) (episodeOutcome, error) {
	if video.DurationSeconds > 0 && video.DurationSeconds < s.minDur {
		return episodeSkipped, nil
	}

	publishedAt, _ := time.Parse(time.RFC3339, video.PublishedAt)

	episode := &models.Episode{
		VideoID:         video.ID,
		SourceID:        source.ID,
		Title:           video.Title,
		Description:     video.Description,
		ChannelID:       video.ChannelID,
		ChannelTitle:    video.ChannelTitle,
		Duration:        video.Duration,
		DurationSeconds: video.DurationSeconds,
		ThumbnailURL:    video.ThumbnailURL,
		ViewCount:       video.ViewCount,
		LikeCount:       video.LikeCount,
		CommentCount:    video.CommentCount,
		Tags:            video.Tags,
		Status:          models.EpisodeStatusDiscovered,
		PublishedAt:     publishedAt,
	}

	_, created, err := s.storage.EpisodeStorage().Upsert(ctx, episode)
	if err != nil {
		return episodeSkipped, err
	}
	if created {
		return episodeCreated, nil
	}
	return episodeUpdated, nil
}

func (s *Ingestor) upsertChannelSource(ctx context.Context, channel *interfaces.ChannelInfo, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*models.Source, error) {
	displayName := parsed.DisplayName
	if displayName == "" {
		displayName = channel.Title
	}

	return s.storage.SourceStorage().Upsert(ctx, &models.Source{
		ExternalID:      channel.ID,
		Type:            models.SourceTypeChannel,
		Title:           channel.Title,
		Description:     channel.Description,
		SubscriberCount: channel.SubscriberCount,
		VideoCount:      channel.VideoCount,
		CustomURL:       channel.CustomURL,
		ThumbnailURL:    channel.ThumbnailURL,
		OriginalURL:     parsed.OriginalURL,
		DisplayName:     displayName,
		AddedBy:         requestedBy,
		ScanFrequency:   frequency,
	})
}

func (s *Ingestor) upsertPlaylistSource(ctx context.Context, playlist *interfaces.PlaylistInfo, parsed *youtube.ParsedURL, frequency models.ScanFrequency, requestedBy string) (*models.Source, error) {
	displayName := parsed.DisplayName
	if displayName == "" {
		displayName = playlist.Title
	}

	return s.storage.SourceStorage().Upsert(ctx, &models.Source{
		ExternalID:    playlist.ID,
		Type:          models.SourceTypePlaylist,
		Title:         playlist.Title,
		Description:   playlist.Description,
		ChannelID:     playlist.ChannelID,
		ChannelTitle:  playlist.ChannelTitle,
		ItemCount:     playlist.ItemCount,
		ThumbnailURL:  playlist.ThumbnailURL,
		OriginalURL:   parsed.OriginalURL,
		DisplayName:   displayName,
		AddedBy:       requestedBy,
		ScanFrequency: frequency,
	})
}
