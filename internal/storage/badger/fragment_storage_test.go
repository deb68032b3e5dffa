package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/models"
)

func testFragment(episodeID string, startTime int) *models.Fragment {
	return &models.Fragment{
		EpisodeID:       episodeID,
		VideoID:         "vid00000001",
		Text:            "habla de su terapia",
		StartTime:       startTime,
		EndTime:         startTime + 90,
		MatchedKeywords: []string{"terapia"},
		ConfidenceScore: 80,
		DetectedBy:      models.DetectedByLLMClassifier,
		ReviewStatus:    models.ReviewStatusPending,
	}
}

func TestFragmentReplaceForEpisode(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(ctx(), "ep_1", []*models.Fragment{
		testFragment("ep_1", 100),
		testFragment("ep_1", 10),
	}))

	fragments, err := storage.FragmentStorage().ListByEpisode(ctx(), "ep_1")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.NotEmpty(t, fragments[0].ID)
	assert.Equal(t, 10, fragments[0].StartTime, "fragments listed in time order")
	assert.Equal(t, 100, fragments[1].StartTime)

	// Replacement removes the previous set entirely.
	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(ctx(), "ep_1", []*models.Fragment{
		testFragment("ep_1", 50),
	}))

	replaced, err := storage.FragmentStorage().ListByEpisode(ctx(), "ep_1")
	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Equal(t, 50, replaced[0].StartTime)
}

func TestFragmentReplaceScopedToEpisode(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(ctx(), "ep_1", []*models.Fragment{testFragment("ep_1", 10)}))
	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(ctx(), "ep_2", []*models.Fragment{testFragment("ep_2", 20)}))

	require.NoError(t, storage.FragmentStorage().DeleteForEpisode(ctx(), "ep_1"))

	gone, err := storage.FragmentStorage().ListByEpisode(ctx(), "ep_1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := storage.FragmentStorage().ListByEpisode(ctx(), "ep_2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestFragmentUpdate(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(ctx(), "ep_1", []*models.Fragment{testFragment("ep_1", 10)}))

	fragments, err := storage.FragmentStorage().ListByEpisode(ctx(), "ep_1")
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	fragment := fragments[0]
	fragment.FeedbackCount = 1
	fragment.PositiveFeedback = 1
	fragment.ReviewStatus = models.ReviewStatusApproved
	require.NoError(t, storage.FragmentStorage().Update(ctx(), fragment))

	reloaded, err := storage.FragmentStorage().GetByID(ctx(), fragment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, reloaded.ReviewStatus)
	assert.Equal(t, 1, reloaded.PositiveFeedback)

	missing := testFragment("ep_1", 99)
	missing.ID = "frag_missing"
	assert.Error(t, storage.FragmentStorage().Update(ctx(), missing))
}
