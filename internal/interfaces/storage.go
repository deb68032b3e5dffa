package interfaces

import (
	"context"

	"github.com/ternarybob/ausculto/internal/models"
)

// SourceStorage persists tracked channels and playlists
type SourceStorage interface {
	// Upsert creates the source keyed by ExternalID or patches metadata on an
	// existing record, returning the stored source. Existing scan
	// configuration (frequency, enabled flag) is preserved on update.
	Upsert(ctx context.Context, source *models.Source) (*models.Source, error)
	GetByID(ctx context.Context, id string) (*models.Source, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Source, error)
	List(ctx context.Context, opts *SourceListOptions) ([]*models.Source, error)
	Update(ctx context.Context, source *models.Source) error
	// MarkScanned stamps LastScanAt; called on scan completion regardless of
	// per-episode outcomes.
	MarkScanned(ctx context.Context, id string) error
	// SoftDelete flips status to deleted; sources are never hard-deleted
	SoftDelete(ctx context.Context, id string) error
}

// SourceListOptions filters source listings
type SourceListOptions struct {
	Status models.SourceStatus
	Type   models.SourceType
	Limit  int
}

// EpisodeStorage persists discovered episodes
type EpisodeStorage interface {
	// Upsert creates the episode keyed by VideoID or patches metadata on an
	// existing record. An existing episode in error state is reset to
	// discovered with its error cleared; other processing state survives.
	Upsert(ctx context.Context, episode *models.Episode) (*models.Episode, bool, error)
	GetByID(ctx context.Context, id string) (*models.Episode, error)
	GetByVideoID(ctx context.Context, videoID string) (*models.Episode, error)
	List(ctx context.Context, opts *EpisodeListOptions) ([]*models.Episode, error)
	Update(ctx context.Context, episode *models.Episode) error
}

// EpisodeListOptions filters episode listings
type EpisodeListOptions struct {
	SourceID    string
	Status      models.EpisodeStatus
	HasMentions *bool
	Limit       int
}

// TranscriptionStorage persists transcript segment lists
type TranscriptionStorage interface {
	// Replace stores the transcription for its episode, removing any prior
	// record. Transcriptions are immutable otherwise.
	Replace(ctx context.Context, transcription *models.Transcription) error
	GetByEpisodeID(ctx context.Context, episodeID string) (*models.Transcription, error)
}

// FragmentStorage persists detected mention fragments
type FragmentStorage interface {
	// ReplaceForEpisode atomically swaps the fragment set for an episode:
	// delete-all-then-insert inside one transaction so no stale fragments
	// survive a reprocessing pass.
	ReplaceForEpisode(ctx context.Context, episodeID string, fragments []*models.Fragment) error
	DeleteForEpisode(ctx context.Context, episodeID string) error
	GetByID(ctx context.Context, id string) (*models.Fragment, error)
	ListByEpisode(ctx context.Context, episodeID string) ([]*models.Fragment, error)
	Update(ctx context.Context, fragment *models.Fragment) error
}

// FeedbackStorage persists human ratings; append-only
type FeedbackStorage interface {
	Append(ctx context.Context, feedback *models.Feedback) error
	ListByFragment(ctx context.Context, fragmentID string) ([]*models.Feedback, error)
}

// ScanJobStorage persists asynchronous job records
type ScanJobStorage interface {
	Create(ctx context.Context, job *models.ScanJob) error
	GetByID(ctx context.Context, id string) (*models.ScanJob, error)
	Update(ctx context.Context, job *models.ScanJob) error
	// GetActiveForTarget returns the most recent pending/running job for the
	// target, or nil when none exists.
	GetActiveForTarget(ctx context.Context, targetType models.TargetType, targetID string) (*models.ScanJob, error)
	ListByTarget(ctx context.Context, targetType models.TargetType, targetID string, limit int) ([]*models.ScanJob, error)
}

// KeywordStorage persists keyword configuration
type KeywordStorage interface {
	Save(ctx context.Context, keyword *models.KeywordConfig) error
	GetByKeyword(ctx context.Context, keyword string) (*models.KeywordConfig, error)
	List(ctx context.Context, activeOnly bool) ([]*models.KeywordConfig, error)
	// ActiveKeywords returns the active keyword strings. May be empty; callers
	// are expected to fall back to the compiled default list.
	ActiveKeywords(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	SourceStorage() SourceStorage
	EpisodeStorage() EpisodeStorage
	TranscriptionStorage() TranscriptionStorage
	FragmentStorage() FragmentStorage
	FeedbackStorage() FeedbackStorage
	ScanJobStorage() ScanJobStorage
	KeywordStorage() KeywordStorage
	Close() error
}
