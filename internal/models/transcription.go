package models

import "time"

// TranscriptSegment is one timed span of transcript text. Start and End are
// seconds from the beginning of the episode.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription holds the ordered segment list for one episode. Immutable once
// stored; a re-fetch replaces the record wholesale.
type Transcription struct {
	ID        string              `json:"id" badgerhold:"key"`
	EpisodeID string              `json:"episode_id" badgerhold:"unique"`
	VideoID   string              `json:"video_id"`
	Language  string              `json:"language,omitempty"`
	Segments  []TranscriptSegment `json:"segments"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// SegmentCount returns the number of segments, used for job progress totals
func (t *Transcription) SegmentCount() int {
	return len(t.Segments)
}
