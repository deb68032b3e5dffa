package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/feedback"
)

func postFeedback(handler *FeedbackHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.SubmitHandler(rec, req)
	return rec
}

func TestSubmitFeedback(t *testing.T) {
	storage := newTestStorage(t)
	episode := seedTestEpisode(t, storage, "vid00000001")

	fragment := &models.Fragment{
		EpisodeID:       episode.ID,
		VideoID:         episode.VideoID,
		Text:            "habla de su terapia",
		StartTime:       10,
		EndTime:         100,
		ConfidenceScore: 80,
	}
	require.NoError(t, storage.FragmentStorage().ReplaceForEpisode(context.Background(), episode.ID, []*models.Fragment{fragment}))

	handler := NewFeedbackHandler(feedback.NewService(storage, common.GetLogger()), common.GetLogger())

	rec := postFeedback(handler, `{"fragment_id":"`+fragment.ID+`","rating":"useful","comment":"buen hallazgo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result feedback.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.FeedbackID)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Positive)

	updated, err := storage.FragmentStorage().GetByID(context.Background(), fragment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.FeedbackCount)
	assert.Equal(t, 1, updated.PositiveFeedback)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewFeedbackHandler(feedback.NewService(storage, common.GetLogger()), common.GetLogger())

	rec := postFeedback(handler, `{"rating":"useful"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postFeedback(handler, `{"fragment_id":"fr_1","rating":"amazing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postFeedback(handler, `{"fragment_id":"fr_missing","rating":"useful"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
