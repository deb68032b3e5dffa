package models

import (
	"fmt"
	"time"
)

// SourceType identifies what kind of reference a source was registered from
type SourceType string

const (
	SourceTypeChannel  SourceType = "channel"
	SourceTypePlaylist SourceType = "playlist"
)

// SourceStatus represents the lifecycle state of a tracked source.
// Sources are never hard-deleted; status flips to "deleted" instead.
type SourceStatus string

const (
	SourceStatusActive  SourceStatus = "active"
	SourceStatusPaused  SourceStatus = "paused"
	SourceStatusError   SourceStatus = "error"
	SourceStatusDeleted SourceStatus = "deleted"
)

// ScanFrequency controls how often the scheduler re-scans a source
type ScanFrequency string

const (
	ScanFrequencyDaily  ScanFrequency = "daily"
	ScanFrequencyWeekly ScanFrequency = "weekly"
	ScanFrequencyManual ScanFrequency = "manual"
)

// Source represents a tracked channel or playlist that episodes are discovered from.
// ExternalID is the platform identifier (channel/playlist id) and is unique across
// sources; repeated scans upsert against it.
type Source struct {
	ID          string     `json:"id" badgerhold:"key"`
	ExternalID  string     `json:"external_id" badgerhold:"unique"`
	Type        SourceType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`

	// Channel-specific metadata
	SubscriberCount string `json:"subscriber_count,omitempty"`
	VideoCount      string `json:"video_count,omitempty"`
	CustomURL       string `json:"custom_url,omitempty"`

	// Playlist-specific metadata
	ChannelID    string `json:"channel_id,omitempty"`
	ChannelTitle string `json:"channel_title,omitempty"`
	ItemCount    int    `json:"item_count,omitempty"`

	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	OriginalURL  string `json:"original_url"`
	DisplayName  string `json:"display_name,omitempty"`
	AddedBy      string `json:"added_by"`

	ScanFrequency ScanFrequency `json:"scan_frequency"`
	ScanEnabled   bool          `json:"scan_enabled"`
	Status        SourceStatus  `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`

	AddedAt    time.Time  `json:"added_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
}

// Validate checks required fields on a source record
func (s *Source) Validate() error {
	if s.ExternalID == "" {
		return fmt.Errorf("source external ID is required")
	}
	if s.Type != SourceTypeChannel && s.Type != SourceTypePlaylist {
		return fmt.Errorf("invalid source type: %s", s.Type)
	}
	switch s.ScanFrequency {
	case ScanFrequencyDaily, ScanFrequencyWeekly, ScanFrequencyManual:
	default:
		return fmt.Errorf("invalid scan frequency: %s", s.ScanFrequency)
	}
	return nil
}

// ScanDue reports whether the source's cadence calls for another scan at now.
// Manual sources are never due; a source that has never been scanned is always due.
func (s *Source) ScanDue(now time.Time) bool {
	if !s.ScanEnabled || s.Status != SourceStatusActive {
		return false
	}
	if s.ScanFrequency == ScanFrequencyManual {
		return false
	}
	if s.LastScanAt == nil {
		return true
	}
	switch s.ScanFrequency {
	case ScanFrequencyDaily:
		return now.Sub(*s.LastScanAt) > 24*time.Hour
	case ScanFrequencyWeekly:
		return now.Sub(*s.LastScanAt) > 7*24*time.Hour
	}
	return false
}
