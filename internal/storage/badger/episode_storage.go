package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// EpisodeStorage implements the EpisodeStorage interface for Badger
type EpisodeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEpisodeStorage creates a new EpisodeStorage instance
func NewEpisodeStorage(db *BadgerDB, logger arbor.ILogger) interfaces.EpisodeStorage {
	return &EpisodeStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or refreshes an episode keyed by VideoID. The second return
// value reports whether a new record was created.
func (s *EpisodeStorage) Upsert(ctx context.Context, episode *models.Episode) (*models.Episode, bool, error) {
	if episode.VideoID == "" {
		return nil, false, fmt.Errorf("episode video ID is required")
	}

	now := time.Now()

	existing, err := s.GetByVideoID(ctx, episode.VideoID)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		episode.ID = common.NewEpisodeID()
		episode.Status = models.EpisodeStatusDiscovered
		if episode.DiscoveredAt.IsZero() {
			episode.DiscoveredAt = now
		}
		episode.UpdatedAt = now
		if err := s.db.Store().Insert(episode.ID, episode); err != nil {
			return nil, false, fmt.Errorf("failed to insert episode: %w", err)
		}
		return episode, true, nil
	}

	// Refresh metadata without resetting processing state. An episode stuck in
	// error is given another chance on the next scan.
	existing.Title = episode.Title
	existing.Description = episode.Description
	existing.ChannelTitle = episode.ChannelTitle
	existing.ThumbnailURL = episode.ThumbnailURL
	existing.ViewCount = episode.ViewCount
	existing.LikeCount = episode.LikeCount
	existing.CommentCount = episode.CommentCount
	existing.Tags = episode.Tags
	if existing.Status == models.EpisodeStatusError {
		existing.Status = models.EpisodeStatusDiscovered
		existing.ProcessingError = ""
		existing.TranscriptionError = ""
	}
	existing.UpdatedAt = now

	if err := s.db.Store().Update(existing.ID, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update episode: %w", err)
	}
	return existing, false, nil
}

func (s *EpisodeStorage) GetByID(ctx context.Context, id string) (*models.Episode, error) {
	var episode models.Episode
	if err := s.db.Store().Get(id, &episode); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return &episode, nil
}

func (s *EpisodeStorage) GetByVideoID(ctx context.Context, videoID string) (*models.Episode, error) {
	var episodes []models.Episode
	if err := s.db.Store().Find(&episodes, badgerhold.Where("VideoID").Eq(videoID)); err != nil {
		return nil, fmt.Errorf("failed to find episode by video ID: %w", err)
	}
	if len(episodes) == 0 {
		return nil, nil
	}
	return &episodes[0], nil
}

func (s *EpisodeStorage) List(ctx context.Context, opts *interfaces.EpisodeListOptions) ([]*models.Episode, error) {
	query := badgerhold.Where("ID").Ne("")

	if opts != nil {
		if opts.SourceID != "" {
			query = query.And("SourceID").Eq(opts.SourceID)
		}
		if opts.Status != "" {
			query = query.And("Status").Eq(opts.Status)
		}
		if opts.HasMentions != nil {
			query = query.And("HasMentions").Eq(*opts.HasMentions)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}
	query = query.SortBy("PublishedAt").Reverse()

	var episodes []models.Episode
	if err := s.db.Store().Find(&episodes, query); err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	result := make([]*models.Episode, len(episodes))
	for i := range episodes {
		result[i] = &episodes[i]
	}
	return result, nil
}

func (s *EpisodeStorage) Update(ctx context.Context, episode *models.Episode) error {
	if episode.ID == "" {
		return fmt.Errorf("episode ID is required")
	}
	episode.UpdatedAt = time.Now()
	if err := s.db.Store().Update(episode.ID, episode); err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}
	return nil
}
