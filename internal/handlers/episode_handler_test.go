package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	badgerstorage "github.com/ternarybob/ausculto/internal/storage/badger"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "handler-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func seedTestEpisode(t *testing.T, storage interfaces.StorageManager, videoID string) *models.Episode {
	t.Helper()

	episode := &models.Episode{
		SourceID:        "src_1",
		VideoID:         videoID,
		Title:           "Episodio de prueba",
		Duration:        "PT30M",
		DurationSeconds: 1800,
	}
	_, _, err := storage.EpisodeStorage().Upsert(context.Background(), episode)
	require.NoError(t, err)
	return episode
}

func TestEpisodeListHandler(t *testing.T) {
	storage := newTestStorage(t)
	seedTestEpisode(t, storage, "vid00000001")
	seedTestEpisode(t, storage, "vid00000002")

	handler := NewEpisodeHandler(storage, nil, nil, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/episodes?source_id=src_1", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Episodes []*models.Episode `json:"episodes"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
}

func TestEpisodeGetHandlerNotFound(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewEpisodeHandler(storage, nil, nil, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/episodes/ep_missing", nil)
	rec := httptest.NewRecorder()
	handler.GetHandler(rec, req, "ep_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFragmentsHandlerRankedOrder(t *testing.T) {
	storage := newTestStorage(t)
	episode := seedTestEpisode(t, storage, "vid00000001")

	// Low-confidence fragment with strong positive feedback should outrank
	// a higher-confidence fragment the reviewers rejected.
	rejected := &models.Fragment{
		EpisodeID:        episode.ID,
		VideoID:          episode.VideoID,
		Text:             "fragmento rechazado",
		StartTime:        10,
		EndTime:          100,
		ConfidenceScore:  90,
		FeedbackCount:    4,
		NegativeFeedback: 4,
	}
	endorsed := &models.Fragment{
		EpisodeID:        episode.ID,
		VideoID:          episode.VideoID,
		Text:             "fragmento confirmado",
		StartTime:        200,
		EndTime:          290,
		ConfidenceScore:  70,
		FeedbackCount:    4,
		PositiveFeedback: 4,
	}
	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(context.Background(), episode.ID, []*models.Fragment{rejected, endorsed}))

	handler := NewEpisodeHandler(storage, nil, nil, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/episodes/"+episode.ID+"/fragments", nil)
	rec := httptest.NewRecorder()
	handler.FragmentsHandler(rec, req, episode.ID)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Fragments []struct {
			Text      string  `json:"text"`
			RankScore float64 `json:"rank_score"`
		} `json:"fragments"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, 2, response.Count)
	assert.Equal(t, "fragmento confirmado", response.Fragments[0].Text)
	assert.Greater(t, response.Fragments[0].RankScore, response.Fragments[1].RankScore)
}

func TestFragmentsHandlerRejectsPost(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewEpisodeHandler(storage, nil, nil, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/episodes/ep_1/fragments", nil)
	rec := httptest.NewRecorder()
	handler.FragmentsHandler(rec, req, "ep_1")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
