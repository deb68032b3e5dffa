package models

import "time"

// JobStatus represents the state of a scan job.
// Transitions: pending -> running -> completed | failed | cancelled.
// Terminal states never transition out.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// Active reports whether a job in this status blocks a new job for the same target
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// JobType identifies the unit of work a scan job performs
type JobType string

const (
	JobTypeFetchEpisodes      JobType = "fetch_episodes"
	JobTypeFetchTranscription JobType = "fetch_transcription"
	JobTypeProcessMentions    JobType = "process_mentions"
	JobTypeFullChannelScan    JobType = "full_channel_scan"
)

// TargetType identifies what entity a scan job operates on
type TargetType string

const (
	TargetTypeSource        TargetType = "source"
	TargetTypeEpisode       TargetType = "episode"
	TargetTypeTranscription TargetType = "transcription"
)

// DefaultMaxRetries caps caller-initiated retries recorded on a job.
// The runner never retries on its own; retry is via force.
const DefaultMaxRetries = 3

// ScanJob is one row per unit of asynchronous work. At most one active
// (pending/running) job exists per (TargetType, TargetID, Type) unless a
// caller explicitly forces a new one.
type ScanJob struct {
	ID         string     `json:"id" badgerhold:"key"`
	Type       JobType    `json:"type"`
	TargetType TargetType `json:"target_type" badgerhold:"index"`
	TargetID   string     `json:"target_id" badgerhold:"index"`

	Status         JobStatus `json:"status" badgerhold:"index"`
	Progress       int       `json:"progress"` // 0-100
	ItemsProcessed int       `json:"items_processed"`
	ItemsTotal     int       `json:"items_total"`
	CurrentStep    string    `json:"current_step,omitempty"` // UI narration only, not control flow
	ErrorMessage   string    `json:"error_message,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	CreatedBy  string                 `json:"created_by"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Results    map[string]interface{} `json:"results,omitempty"`

	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
