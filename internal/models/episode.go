package models

import "time"

// EpisodeStatus tracks an episode through the processing pipeline
type EpisodeStatus string

const (
	EpisodeStatusDiscovered   EpisodeStatus = "discovered"
	EpisodeStatusTranscribing EpisodeStatus = "transcribing"
	EpisodeStatusProcessing   EpisodeStatus = "processing"
	EpisodeStatusCompleted    EpisodeStatus = "completed"
	EpisodeStatusError        EpisodeStatus = "error"
	EpisodeStatusSkipped      EpisodeStatus = "skipped"
)

// Episode represents a single discovered video. One record per distinct VideoID;
// re-ingestion patches metadata without resetting processing state unless the
// episode was previously in error.
type Episode struct {
	ID           string `json:"id" badgerhold:"key"`
	VideoID      string `json:"video_id" badgerhold:"unique"`
	SourceID     string `json:"source_id" badgerhold:"index"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`

	Duration        string `json:"duration"` // ISO-8601 as reported by the metadata API
	DurationSeconds int    `json:"duration_seconds"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	ViewCount       string `json:"view_count,omitempty"`
	LikeCount       string `json:"like_count,omitempty"`
	CommentCount    string `json:"comment_count,omitempty"`
	Tags            []string `json:"tags,omitempty"`

	Status EpisodeStatus `json:"status" badgerhold:"index"`

	// Transcription summary
	HasTranscription       bool       `json:"has_transcription"`
	TranscriptionFetchedAt *time.Time `json:"transcription_fetched_at,omitempty"`
	TranscriptionError     string     `json:"transcription_error,omitempty"`
	Language               string     `json:"language,omitempty"`

	// Mention summary (written by the detection runner, recomputed each run)
	HasBeenProcessed  bool       `json:"has_been_processed"`
	HasMentions       bool       `json:"has_mentions"`
	MentionCount      int        `json:"mention_count"`
	AverageConfidence int        `json:"average_confidence"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	ProcessingError   string     `json:"processing_error,omitempty"`

	PublishedAt  time.Time `json:"published_at"`
	DiscoveredAt time.Time `json:"discovered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
