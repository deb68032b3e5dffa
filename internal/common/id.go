package common

import (
	"github.com/google/uuid"
)

// NewSourceID generates a unique source ID with the "src_" prefix
func NewSourceID() string {
	return "src_" + uuid.New().String()
}

// NewEpisodeID generates a unique episode ID with the "ep_" prefix
func NewEpisodeID() string {
	return "ep_" + uuid.New().String()
}

// NewTranscriptionID generates a unique transcription ID with the "tr_" prefix
func NewTranscriptionID() string {
	return "tr_" + uuid.New().String()
}

// NewFragmentID generates a unique fragment ID with the "frag_" prefix
func NewFragmentID() string {
	return "frag_" + uuid.New().String()
}

// NewFeedbackID generates a unique feedback ID with the "fb_" prefix
func NewFeedbackID() string {
	return "fb_" + uuid.New().String()
}

// NewJobID generates a unique scan job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewKeywordID generates a unique keyword config ID with the "kw_" prefix
func NewKeywordID() string {
	return "kw_" + uuid.New().String()
}
