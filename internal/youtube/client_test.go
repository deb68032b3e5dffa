package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChannelByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		assert.Equal(t, "UCabcdefghijklmnopqrstuv", r.URL.Query().Get("id"))
		assert.Empty(t, r.URL.Query().Get("forHandle"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "UCabcdefghijklmnopqrstuv",
				"snippet": {
					"title": "Canal de Psicología",
					"description": "desc",
					"thumbnails": {"high": {"url": "https://img/high.jpg"}}
				},
				"statistics": {"subscriberCount": "1200", "videoCount": "88"},
				"contentDetails": {"relatedPlaylists": {"uploads": "UUabcdefghijklmnopqrstuv"}}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	channel, err := client.GetChannel(context.Background(), "UCabcdefghijklmnopqrstuv")
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, "Canal de Psicología", channel.Title)
	assert.Equal(t, "UUabcdefghijklmnopqrstuv", channel.UploadsPlaylist)
	assert.Equal(t, "https://img/high.jpg", channel.ThumbnailURL)
}

func TestGetChannelByHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "@somecreator", r.URL.Query().Get("forHandle"))
		assert.Empty(t, r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	channel, err := client.GetChannel(context.Background(), "@somecreator")
	require.NoError(t, err)
	assert.Nil(t, channel)
}

func TestQuotaExceededError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "errors": [{"reason": "quotaExceeded"}]}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GetVideo(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.True(t, IsQuotaExceeded(err))
}

func TestGetPlaylistVideosTwoStepLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlistItems":
			assert.Equal(t, "PLabc123_xyz", r.URL.Query().Get("playlistId"))
			assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
			_, _ = w.Write([]byte(`{
				"items": [
					{"snippet": {"resourceId": {"videoId": "vid00000001"}}},
					{"snippet": {"resourceId": {"videoId": "vid00000002"}}}
				],
				"nextPageToken": "TOKEN2",
				"pageInfo": {"totalResults": 120}
			}`))
		case "/videos":
			assert.Equal(t, "vid00000001,vid00000002", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{
				"items": [
					{
						"id": "vid00000001",
						"snippet": {"title": "Episodio 1", "publishedAt": "2025-01-01T00:00:00Z", "thumbnails": {}},
						"contentDetails": {"duration": "PT32M10S"},
						"statistics": {"viewCount": "4000"}
					},
					{
						"id": "vid00000002",
						"snippet": {"title": "Episodio 2", "publishedAt": "2025-01-08T00:00:00Z", "thumbnails": {}},
						"contentDetails": {"duration": "PT45S"},
						"statistics": {}
					}
				]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	page, err := client.GetPlaylistVideos(context.Background(), "PLabc123_xyz", 50, "")
	require.NoError(t, err)
	require.Len(t, page.Videos, 2)
	assert.Equal(t, "TOKEN2", page.NextPageToken)
	assert.Equal(t, 120, page.TotalResults)
	assert.Equal(t, 1930, page.Videos[0].DurationSeconds)
	assert.Equal(t, 45, page.Videos[1].DurationSeconds)
}

func TestGetChannelVideosUsesUploadsPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			_, _ = w.Write([]byte(`{
				"items": [{
					"id": "UCabcdefghijklmnopqrstuv",
					"snippet": {"title": "Canal", "thumbnails": {}},
					"statistics": {},
					"contentDetails": {"relatedPlaylists": {"uploads": "UUabcdefghijklmnopqrstuv"}}
				}]
			}`))
		case "/playlistItems":
			assert.Equal(t, "UUabcdefghijklmnopqrstuv", r.URL.Query().Get("playlistId"))
			_, _ = w.Write([]byte(`{"items": [], "pageInfo": {"totalResults": 0}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	page, err := client.GetChannelVideos(context.Background(), "UCabcdefghijklmnopqrstuv", 50, "")
	require.NoError(t, err)
	assert.Empty(t, page.Videos)
}
