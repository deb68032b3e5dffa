package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/models"
)

func TestTranscriptionReplace(t *testing.T) {
	storage := newTestStorage(t)

	first := &models.Transcription{
		EpisodeID: "ep_1",
		VideoID:   "dQw4w9WgXcQ",
		Language:  "es",
		Segments: []models.TranscriptSegment{
			{Start: 0, End: 4.2, Text: "hola a todos"},
		},
	}
	require.NoError(t, storage.TranscriptionStorage().Replace(ctx(), first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.FetchedAt.IsZero())

	second := &models.Transcription{
		EpisodeID: "ep_1",
		VideoID:   "dQw4w9WgXcQ",
		Language:  "es",
		Segments: []models.TranscriptSegment{
			{Start: 0, End: 3.1, Text: "bienvenidos"},
			{Start: 3.1, End: 8.0, Text: "hoy hablamos de salud"},
		},
	}
	require.NoError(t, storage.TranscriptionStorage().Replace(ctx(), second))

	stored, err := storage.TranscriptionStorage().GetByEpisodeID(ctx(), "ep_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, second.ID, stored.ID)
	assert.Equal(t, 2, stored.SegmentCount())
}

func TestTranscriptionGetMissing(t *testing.T) {
	storage := newTestStorage(t)

	stored, err := storage.TranscriptionStorage().GetByEpisodeID(ctx(), "ep_missing")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestTranscriptionRequiresEpisodeID(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.TranscriptionStorage().Replace(ctx(), &models.Transcription{VideoID: "dQw4w9WgXcQ"})
	assert.Error(t, err)
}
