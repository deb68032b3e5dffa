package interfaces

import "context"

// ChannelInfo is the normalized channel record from the metadata API
type ChannelInfo struct {
	ID              string
	Title           string
	Description     string
	CustomURL       string
	ThumbnailURL    string
	SubscriberCount string
	VideoCount      string
	UploadsPlaylist string
}

// PlaylistInfo is the normalized playlist record from the metadata API
type PlaylistInfo struct {
	ID           string
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	ThumbnailURL string
	ItemCount    int
}

// VideoInfo is the normalized video record from the metadata API
type VideoInfo struct {
	ID              string
	Title           string
	Description     string
	ChannelID       string
	ChannelTitle    string
	PublishedAt     string // RFC 3339 as reported by the API
	Duration        string // ISO-8601, e.g. "PT1H2M3S"
	DurationSeconds int
	ThumbnailURL    string
	ViewCount       string
	LikeCount       string
	CommentCount    string
	Tags            []string
}

// VideoPage is one page of a paginated video listing
type VideoPage struct {
	Videos        []*VideoInfo
	NextPageToken string
	TotalResults  int
}

// MetadataClient resolves channel/playlist/video references against the
// external video-metadata API. Implementations must surface quota exhaustion
// as a distinguishable error.
type MetadataClient interface {
	GetChannel(ctx context.Context, id string) (*ChannelInfo, error)
	GetPlaylist(ctx context.Context, id string) (*PlaylistInfo, error)
	GetVideo(ctx context.Context, id string) (*VideoInfo, error)
	GetChannelVideos(ctx context.Context, channelID string, pageSize int, pageToken string) (*VideoPage, error)
	GetPlaylistVideos(ctx context.Context, playlistID string, pageSize int, pageToken string) (*VideoPage, error)
}
