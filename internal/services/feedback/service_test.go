package feedback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	badgerstorage "github.com/ternarybob/ausculto/internal/storage/badger"
)

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	manager, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "feedback-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return NewService(manager, common.GetLogger()), manager
}

func seedFragment(t *testing.T, manager interfaces.StorageManager, confidence int) *models.Fragment {
	t.Helper()

	fragment := &models.Fragment{
		EpisodeID:       "ep_test",
		Text:            "mi terapeuta me ayudó mucho",
		Context:         "contexto ampliado",
		ConfidenceScore: confidence,
		ReviewStatus:    models.ReviewStatusPending,
		DetectedBy:      models.DetectedByLLMClassifier,
	}
	require.NoError(t, manager.FragmentStorage().ReplaceForEpisode(context.Background(), "ep_test", []*models.Fragment{fragment}))

	stored, err := manager.FragmentStorage().ListByEpisode(context.Background(), "ep_test")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	return stored[0]
}

func TestSubmitPositiveFeedbackApproves(t *testing.T) {
	service, manager := newTestService(t)
	fragment := seedFragment(t, manager, 80)

	result, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingUseful,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Positive)
	assert.Equal(t, 0, result.Summary.Negative)
	assert.Equal(t, 5.0, result.Summary.AverageRating)
	assert.Equal(t, 94.0, result.Summary.RankScore)

	updated, err := manager.FragmentStorage().GetByID(context.Background(), fragment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, updated.ReviewStatus)
	assert.Equal(t, 1, updated.FeedbackCount)
}

func TestSubmitMixedFeedbackMarksReviewed(t *testing.T) {
	service, manager := newTestService(t)
	fragment := seedFragment(t, manager, 70)

	_, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingUseful,
	})
	require.NoError(t, err)

	result, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingNotUseful,
		Issues:     []models.IssueTag{models.IssueWrongCategory},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Positive)
	assert.Equal(t, 1, result.Summary.Negative)
	assert.Equal(t, 2.5, result.Summary.AverageRating)
	require.NotNil(t, result.Summary.ApprovalRate)
	assert.Equal(t, 0.5, *result.Summary.ApprovalRate)
	assert.Equal(t, 1, result.Summary.Issues["wrong_category"])

	updated, err := manager.FragmentStorage().GetByID(context.Background(), fragment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusReviewed, updated.ReviewStatus)
}

func TestSubmitOnlyNegativeRejects(t *testing.T) {
	service, manager := newTestService(t)
	fragment := seedFragment(t, manager, 70)

	_, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingIrrelevant,
	})
	require.NoError(t, err)

	updated, err := manager.FragmentStorage().GetByID(context.Background(), fragment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, updated.ReviewStatus)
	assert.Equal(t, 0.0, updated.AverageRating)
}

func TestSubmitUnknownFragmentFails(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Submit(context.Background(), &Submission{
		FragmentID: "frag_missing",
		Rating:     models.RatingUseful,
	})
	assert.Error(t, err)
}

func TestSubmitRejectsUnknownIssueTag(t *testing.T) {
	service, manager := newTestService(t)
	fragment := seedFragment(t, manager, 70)

	_, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingUseful,
		Issues:     []models.IssueTag{"made_up_tag"},
	})
	assert.Error(t, err)
}

func TestSubmitDefaultsSubmitter(t *testing.T) {
	service, manager := newTestService(t)
	fragment := seedFragment(t, manager, 70)

	result, err := service.Submit(context.Background(), &Submission{
		FragmentID: fragment.ID,
		Rating:     models.RatingUseful,
	})
	require.NoError(t, err)

	history, err := manager.FeedbackStorage().ListByFragment(context.Background(), result.FragmentID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, DefaultSubmitter, history[0].SubmittedBy)
}

func TestStatsForEpisodeEmpty(t *testing.T) {
	service, _ := newTestService(t)

	stats, err := service.StatsForEpisode(context.Background(), "ep_none")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFragments)
	assert.Empty(t, stats.TopIssues)
	assert.Empty(t, stats.PromptRecommendations)
}

func TestStatsForEpisode(t *testing.T) {
	service, manager := newTestService(t)

	fragments := []*models.Fragment{
		{EpisodeID: "ep_test", Text: "uno", ConfidenceScore: 80, ReviewStatus: models.ReviewStatusPending, StartTime: 0},
		{EpisodeID: "ep_test", Text: "dos", ConfidenceScore: 60, ReviewStatus: models.ReviewStatusPending, StartTime: 100},
	}
	require.NoError(t, manager.FragmentStorage().ReplaceForEpisode(context.Background(), "ep_test", fragments))

	stored, err := manager.FragmentStorage().ListByEpisode(context.Background(), "ep_test")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	_, err = service.Submit(context.Background(), &Submission{
		FragmentID: stored[0].ID,
		Rating:     models.RatingUseful,
	})
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), &Submission{
		FragmentID: stored[0].ID,
		Rating:     models.RatingNotUseful,
		Issues:     []models.IssueTag{models.IssueFalsePositive, models.IssuePoorContext},
	})
	require.NoError(t, err)

	stats, err := service.StatsForEpisode(context.Background(), "ep_test")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalFragments)
	assert.Equal(t, 1, stats.FragmentsWithFeedback)
	assert.Equal(t, 2, stats.FeedbackCount)
	assert.Equal(t, 1, stats.PositiveFeedback)
	assert.Equal(t, 1, stats.NegativeFeedback)
	require.NotNil(t, stats.ApprovalRate)
	assert.Equal(t, 0.5, *stats.ApprovalRate)
	assert.Equal(t, 0.5, stats.CoverageRate)
	assert.Equal(t, 70.0, stats.AverageConfidence)

	require.Len(t, stats.TopIssues, 2)
	assert.Equal(t, 1, stats.TopIssues[0].Count)

	// false_positive and poor_context both present, so both recommendation
	// families appear.
	assert.Len(t, stats.PromptRecommendations, 2)
}
