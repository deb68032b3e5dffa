package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(common.TranscriptConfig{
		Token:           "test-token",
		BaseURL:         serverURL,
		PollInterval:    "1s",
		MaxPollAttempts: 5,
		DatasetPageSize: 2,
		DatasetMaxItems: 10,
	}, common.GetLogger())
}

func TestFetchTranscriptPollsUntilTerminal(t *testing.T) {
	pollCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/acts/pintostudio~youtube-transcript-scraper/runs":
			var input map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			assert.Equal(t, "https://www.youtube.com/watch?v=vid00000001", input["videoUrl"])
			_, _ = w.Write([]byte(`{"data": {"id": "run1", "status": "RUNNING"}}`))
		case r.URL.Path == "/actor-runs/run1":
			pollCount++
			status := "RUNNING"
			if pollCount >= 2 {
				status = "SUCCEEDED"
			}
			fmt.Fprintf(w, `{"data": {"id": "run1", "status": %q, "defaultDatasetId": "ds1"}}`, status)
		case r.URL.Path == "/datasets/ds1/items":
			if r.URL.Query().Get("offset") == "0" {
				_, _ = w.Write([]byte(`[
					{"segments": [{"start": 0, "end": 3, "text": "uno"}]},
					{"segments": [{"start": 3, "end": 6, "text": "dos"}]}
				]`))
			} else {
				_, _ = w.Write([]byte(`[]`))
			}
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.FetchTranscript(context.Background(), "vid00000001")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "run1", result.RunID)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "uno", result.Segments[0].Text)
	assert.GreaterOrEqual(t, pollCount, 2)
}

func TestFetchTranscriptNoDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"data": {"id": "run1", "status": "FAILED"}}`))
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.FetchTranscript(context.Background(), "vid00000001")
	require.NoError(t, err)
	assert.Nil(t, result, "missing dataset is a no-data condition")
}

func TestFetchTranscriptEmptyDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"data": {"id": "run1", "status": "SUCCEEDED", "defaultDatasetId": "ds1"}}`))
		case r.URL.Path == "/datasets/ds1/items":
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.FetchTranscript(context.Background(), "vid00000001")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestFetchTranscriptMissingToken(t *testing.T) {
	client := NewClient(common.TranscriptConfig{}, common.GetLogger())

	_, err := client.FetchTranscript(context.Background(), "vid00000001")
	require.Error(t, err)
}
