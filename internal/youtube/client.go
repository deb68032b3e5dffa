// Package youtube provides a client for the YouTube Data API v3, covering
// the channel, playlist, and video lookups the scan pipeline needs.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/ausculto/internal/interfaces"
)

const (
	// DefaultBaseURL is the base URL for the YouTube Data API.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is a YouTube Data API client. It implements
// interfaces.MetadataClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// NewClient creates a new YouTube Data API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// API response envelopes. Only the fields the pipeline reads are mapped.

type apiThumbnails struct {
	Default *struct {
		URL string `json:"url"`
	} `json:"default"`
	Medium *struct {
		URL string `json:"url"`
	} `json:"medium"`
	High *struct {
		URL string `json:"url"`
	} `json:"high"`
}

func (t apiThumbnails) best() string {
	if t.High != nil {
		return t.High.URL
	}
	if t.Medium != nil {
		return t.Medium.URL
	}
	if t.Default != nil {
		return t.Default.URL
	}
	return ""
}

type channelItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		CustomURL   string        `json:"customUrl"`
		Thumbnails  apiThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		SubscriberCount string `json:"subscriberCount"`
		VideoCount      string `json:"videoCount"`
	} `json:"statistics"`
	ContentDetails struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

type playlistItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string        `json:"title"`
		Description  string        `json:"description"`
		ChannelID    string        `json:"channelId"`
		ChannelTitle string        `json:"channelTitle"`
		Thumbnails   apiThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string        `json:"title"`
		Description  string        `json:"description"`
		ChannelID    string        `json:"channelId"`
		ChannelTitle string        `json:"channelTitle"`
		PublishedAt  string        `json:"publishedAt"`
		Thumbnails   apiThumbnails `json:"thumbnails"`
		Tags         []string      `json:"tags"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type playlistItemEntry struct {
	Snippet struct {
		ResourceID struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

type listResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// get performs a GET request against an API endpoint and decodes the JSON
// response into result.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Msg("YouTube API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to read response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK {
		var errBody apiErrorBody
		_ = json.Unmarshal(body, &errBody)

		if resp.StatusCode == http.StatusForbidden &&
			len(errBody.Error.Errors) > 0 && errBody.Error.Errors[0].Reason == "quotaExceeded" {
			return &APIError{Message: "YouTube API quota exceeded", StatusCode: resp.StatusCode, QuotaExceeded: true}
		}

		msg := errBody.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return &APIError{Message: msg, StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &APIError{Message: fmt.Sprintf("failed to decode response: %v", err), StatusCode: resp.StatusCode}
	}

	return nil
}

// GetChannel resolves a channel by canonical ID, @handle, or legacy username.
// Returns nil when the channel does not exist.
func (c *Client) GetChannel(ctx context.Context, id string) (*interfaces.ChannelInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")

	switch {
	case strings.HasPrefix(id, "UC") && len(id) == 24:
		params.Set("id", id)
	case strings.HasPrefix(id, "@"):
		params.Set("forHandle", id)
	default:
		params.Set("forUsername", id)
	}

	var resp listResponse[channelItem]
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	return &interfaces.ChannelInfo{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		CustomURL:       item.Snippet.CustomURL,
		ThumbnailURL:    item.Snippet.Thumbnails.best(),
		SubscriberCount: item.Statistics.SubscriberCount,
		VideoCount:      item.Statistics.VideoCount,
		UploadsPlaylist: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// GetPlaylist fetches playlist metadata. Returns nil when the playlist does
// not exist.
func (c *Client) GetPlaylist(ctx context.Context, id string) (*interfaces.PlaylistInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", id)

	var resp listResponse[playlistItem]
	if err := c.get(ctx, "playlists", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	return &interfaces.PlaylistInfo{
		ID:           item.ID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		ThumbnailURL: item.Snippet.Thumbnails.best(),
		ItemCount:    item.ContentDetails.ItemCount,
	}, nil
}

// GetVideo fetches details for a single video. Returns nil when the video
// does not exist.
func (c *Client) GetVideo(ctx context.Context, id string) (*interfaces.VideoInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", id)

	var resp listResponse[videoItem]
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	return videoInfoFromItem(resp.Items[0]), nil
}

// GetPlaylistVideos fetches one page of a playlist's videos. The playlistItems
// endpoint only carries video IDs, so full details come from a second videos
// lookup.
func (c *Client) GetPlaylistVideos(ctx context.Context, playlistID string, pageSize int, pageToken string) (*interfaces.VideoPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprintf("%d", pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var itemsResp listResponse[playlistItemEntry]
	if err := c.get(ctx, "playlistItems", params, &itemsResp); err != nil {
		return nil, err
	}

	videoIDs := make([]string, 0, len(itemsResp.Items))
	for _, entry := range itemsResp.Items {
		if id := entry.Snippet.ResourceID.VideoID; id != "" {
			videoIDs = append(videoIDs, id)
		}
	}
	if len(videoIDs) == 0 {
		return &interfaces.VideoPage{}, nil
	}

	videoParams := url.Values{}
	videoParams.Set("part", "snippet,contentDetails,statistics")
	videoParams.Set("id", strings.Join(videoIDs, ","))

	var videosResp listResponse[videoItem]
	if err := c.get(ctx, "videos", videoParams, &videosResp); err != nil {
		return nil, err
	}

	videos := make([]*interfaces.VideoInfo, 0, len(videosResp.Items))
	for _, item := range videosResp.Items {
		videos = append(videos, videoInfoFromItem(item))
	}

	return &interfaces.VideoPage{
		Videos:        videos,
		NextPageToken: itemsResp.NextPageToken,
		TotalResults:  itemsResp.PageInfo.TotalResults,
	}, nil
}

// GetChannelVideos fetches one page of a channel's uploads. The API exposes a
// channel's videos through its uploads playlist, so this resolves the channel
// first.
func (c *Client) GetChannelVideos(ctx context.Context, channelID string, pageSize int, pageToken string) (*interfaces.VideoPage, error) {
	channel, err := c.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, &APIError{Message: fmt.Sprintf("channel not found: %s", channelID), StatusCode: http.StatusNotFound}
	}
	if channel.UploadsPlaylist == "" {
		return &interfaces.VideoPage{}, nil
	}

	return c.GetPlaylistVideos(ctx, channel.UploadsPlaylist, pageSize, pageToken)
}

func videoInfoFromItem(item videoItem) *interfaces.VideoInfo {
	return &interfaces.VideoInfo{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		ChannelID:       item.Snippet.ChannelID,
		ChannelTitle:    item.Snippet.ChannelTitle,
		PublishedAt:     item.Snippet.PublishedAt,
		Duration:        item.ContentDetails.Duration,
		DurationSeconds: ParseDuration(item.ContentDetails.Duration),
		ThumbnailURL:    item.Snippet.Thumbnails.best(),
		ViewCount:       item.Statistics.ViewCount,
		LikeCount:       item.Statistics.LikeCount,
		CommentCount:    item.Statistics.CommentCount,
		Tags:            item.Snippet.Tags,
	}
}
