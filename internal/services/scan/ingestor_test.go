package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
	badgerstorage "github.com/ternarybob/ausculto/internal/storage/badger"
)

type fakeMetadataClient struct {
	channel  *interfaces.ChannelInfo
	playlist *interfaces.PlaylistInfo
	video    *interfaces.VideoInfo
	pages    map[string]*interfaces.VideoPage // keyed by page token, "" for first
}

func (f *fakeMetadataClient) GetChannel(ctx context.Context, id string) (*interfaces.ChannelInfo, error) {
	return f.channel, nil
}

func (f *fakeMetadataClient) GetPlaylist(ctx context.Context, id string) (*interfaces.PlaylistInfo, error) {
	return f.playlist, nil
}

func (f *fakeMetadataClient) GetVideo(ctx context.Context, id string) (*interfaces.VideoInfo, error) {
	return f.video, nil
}

func (f *fakeMetadataClient) GetChannelVideos(ctx context.Context, channelID string, pageSize int, pageToken string) (*interfaces.VideoPage, error) {
	if page, ok := f.pages[pageToken]; ok {
		return page, nil
	}
	return &interfaces.VideoPage{}, nil
}

func (f *fakeMetadataClient) GetPlaylistVideos(ctx context.Context, playlistID string, pageSize int, pageToken string) (*interfaces.VideoPage, error) {
	return f.GetChannelVideos(ctx, playlistID, pageSize, pageToken)
}

func testVideo(id string, durationSeconds int) *interfaces.VideoInfo {
	return &interfaces.VideoInfo{
		ID:              id,
		Title:           "Episodio " + id,
		ChannelID:       "UCabcdefghijklmnopqrstuv",
		ChannelTitle:    "Canal",
		PublishedAt:     "2025-01-01T00:00:00Z",
		Duration:        "PT30M",
		DurationSeconds: durationSeconds,
	}
}

func newTestIngestor(t *testing.T, client interfaces.MetadataClient) (*Ingestor, *jobs.Manager, interfaces.StorageManager) {
	t.Helper()

	manager, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "scan-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	jobManager := jobs.NewManager(manager, common.GetLogger())
	ingestor := NewIngestor(manager, client, jobManager, common.YouTubeConfig{}, common.GetLogger())
	return ingestor, jobManager, manager
}

func createScanJob(t *testing.T, jobManager *jobs.Manager, targetID string) *models.ScanJob {
	t.Helper()
	job, err := jobManager.Create(context.Background(), models.JobTypeFetchEpisodes, models.TargetTypeSource, targetID, jobs.CreateOptions{})
	require.NoError(t, err)
	return job
}

func TestResolveReference(t *testing.T) {
	tests := []struct {
		ref      string
		wantType string
		wantID   string
	}{
		{"https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv", "channel", "UCabcdefghijklmnopqrstuv"},
		{"UCabcdefghijklmnopqrstuv", "channel", "UCabcdefghijklmnopqrstuv"},
		{"PLabc123_xyz", "playlist", "PLabc123_xyz"},
		{"@somecreator", "channel", "somecreator"},
		{"dQw4w9WgXcQ", "video", "dQw4w9WgXcQ"},
		{"somelegacyuser", "channel", "somelegacyuser"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			parsed, err := ResolveReference(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, parsed.Type)
			assert.Equal(t, tt.wantID, parsed.ID)
		})
	}
}

func TestResolveReferenceInvalid(t *testing.T) {
	_, err := ResolveReference("")
	assert.Error(t, err)

	_, err = ResolveReference("https://vimeo.com/12345")
	assert.Error(t, err)
}

func TestRunChannelScan(t *testing.T) {
	client := &fakeMetadataClient{
		channel: &interfaces.ChannelInfo{
			ID:              "UCabcdefghijklmnopqrstuv",
			Title:           "Canal de Psicología",
			UploadsPlaylist: "UUabcdefghijklmnopqrstuv",
		},
		pages: map[string]*interfaces.VideoPage{
			"": {
				Videos: []*interfaces.VideoInfo{
					testVideo("vid00000001", 1800),
					testVideo("vid00000002", 60), // below minimum duration
					testVideo("vid00000003", 2400),
				},
			},
		},
	}

	ingestor, jobManager, storage := newTestIngestor(t, client)
	job := createScanJob(t, jobManager, "UCabcdefghijklmnopqrstuv")

	parsed, err := ResolveReference("UCabcdefghijklmnopqrstuv")
	require.NoError(t, err)

	summary, err := ingestor.Run(context.Background(), job.ID, parsed, models.ScanFrequencyDaily, "tester")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EpisodesProcessed)
	assert.Equal(t, 2, summary.NewEpisodes)
	assert.Equal(t, 1, summary.SkippedEpisodes)

	source, err := storage.SourceStorage().GetByID(context.Background(), summary.SourceID)
	require.NoError(t, err)
	assert.Equal(t, "Canal de Psicología", source.Title)
	assert.Equal(t, models.ScanFrequencyDaily, source.ScanFrequency)
	assert.NotNil(t, source.LastScanAt, "lastScanAt stamped on completion")

	episodes, err := storage.EpisodeStorage().List(context.Background(), &interfaces.EpisodeListOptions{SourceID: source.ID})
	require.NoError(t, err)
	assert.Len(t, episodes, 2)

	finished, err := jobManager.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, finished.Status)
	assert.Equal(t, 100, finished.Progress)
	assert.NotNil(t, finished.StartedAt)
	assert.NotNil(t, finished.CompletedAt)
}

func TestRunChannelScanRescanUpdates(t *testing.T) {
	client := &fakeMetadataClient{
		channel: &interfaces.ChannelInfo{ID: "UCabcdefghijklmnopqrstuv", Title: "Canal"},
		pages: map[string]*interfaces.VideoPage{
			"": {Videos: []*interfaces.VideoInfo{testVideo("vid00000001", 1800)}},
		},
	}

	ingestor, jobManager, _ := newTestIngestor(t, client)
	parsed, err := ResolveReference("UCabcdefghijklmnopqrstuv")
	require.NoError(t, err)

	job1 := createScanJob(t, jobManager, parsed.ID)
	first, err := ingestor.Run(context.Background(), job1.ID, parsed, models.ScanFrequencyDaily, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, first.NewEpisodes)

	job2 := createScanJob(t, jobManager, parsed.ID)
	second, err := ingestor.Run(context.Background(), job2.ID, parsed, models.ScanFrequencyDaily, "tester")
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewEpisodes)
	assert.Equal(t, 1, second.UpdatedEpisodes)
}

func TestRunPlaylistScan(t *testing.T) {
	client := &fakeMetadataClient{
		playlist: &interfaces.PlaylistInfo{
			ID:        "PLabc123_xyz",
			Title:     "Serie de salud mental",
			ChannelID: "UCabcdefghijklmnopqrstuv",
		},
		pages: map[string]*interfaces.VideoPage{
			"": {Videos: []*interfaces.VideoInfo{testVideo("vid00000001", 1800)}},
		},
	}

	ingestor, jobManager, storage := newTestIngestor(t, client)
	parsed, err := ResolveReference("PLabc123_xyz")
	require.NoError(t, err)

	job := createScanJob(t, jobManager, parsed.ID)
	summary, err := ingestor.Run(context.Background(), job.ID, parsed, models.ScanFrequencyWeekly, "tester")
	require.NoError(t, err)
	assert.Equal(t, "playlist", summary.SourceType)

	source, err := storage.SourceStorage().GetByID(context.Background(), summary.SourceID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceTypePlaylist, source.Type)
}

func TestRunVideoScanResolvesParentChannel(t *testing.T) {
	client := &fakeMetadataClient{
		channel: &interfaces.ChannelInfo{ID: "UCabcdefghijklmnopqrstuv", Title: "Canal"},
		video:   testVideo("dQw4w9WgXcQ", 1800),
	}

	ingestor, jobManager, storage := newTestIngestor(t, client)
	parsed, err := ResolveReference("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)

	job := createScanJob(t, jobManager, parsed.ID)
	summary, err := ingestor.Run(context.Background(), job.ID, parsed, models.ScanFrequencyManual, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewEpisodes)

	source, err := storage.SourceStorage().GetByID(context.Background(), summary.SourceID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceTypeChannel, source.Type, "video scans register the parent channel")
}

func TestRunChannelNotFoundFailsJob(t *testing.T) {
	client := &fakeMetadataClient{}

	ingestor, jobManager, _ := newTestIngestor(t, client)
	parsed, err := ResolveReference("UCabcdefghijklmnopqrstuv")
	require.NoError(t, err)

	job := createScanJob(t, jobManager, parsed.ID)
	_, err = ingestor.Run(context.Background(), job.ID, parsed, models.ScanFrequencyDaily, "tester")
	require.Error(t, err)

	failed, getErr := jobManager.Get(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.Contains(t, failed.ErrorMessage, "channel not found")
	assert.NotNil(t, failed.CompletedAt)
}

func TestRunPaginationStopsAtPageCap(t *testing.T) {
	pages := map[string]*interfaces.VideoPage{}
	token := ""
	for page := 0; page < 5; page++ {
		next := fmt.Sprintf("T%d", page+1)
		videos := make([]*interfaces.VideoInfo, 0, 2)
		for i := 0; i < 2; i++ {
			videos = append(videos, testVideo(fmt.Sprintf("vid%03d0000%02d", page, i), 1800))
		}
		pages[token] = &interfaces.VideoPage{Videos: videos, NextPageToken: next}
		token = next
	}

	client := &fakeMetadataClient{
		channel: &interfaces.ChannelInfo{ID: "UCabcdefghijklmnopqrstuv", Title: "Canal"},
		pages:   pages,
	}

	ingestor, jobManager, _ := newTestIngestor(t, client)
	parsed, err := ResolveReference("UCabcdefghijklmnopqrstuv")
	require.NoError(t, err)

	job := createScanJob(t, jobManager, parsed.ID)
	summary, err := ingestor.Run(context.Background(), job.ID, parsed, models.ScanFrequencyDaily, "tester")
	require.NoError(t, err)

	// 3 pages of 2 videos; pages beyond the cap are never fetched.
	assert.Equal(t, 6, summary.EpisodesProcessed)
}
