package interfaces

import (
	"context"

	"github.com/ternarybob/ausculto/internal/models"
)

// TranscriptResult is a fetched transcript: ordered segments plus metadata
// about the extraction run for diagnostics.
type TranscriptResult struct {
	Segments []models.TranscriptSegment
	Language string
	RunID    string
}

// TranscriptClient fetches the transcript for a video from the external
// extraction service. Returns (nil, nil) when no transcript is available;
// that is a no-data condition, not an error.
type TranscriptClient interface {
	FetchTranscript(ctx context.Context, videoID string) (*TranscriptResult, error)
}
