// Package transcript fetches video transcripts through an Apify-style actor
// service and normalizes the actor's dataset output into timed segments.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
)

const (
	// DefaultBaseURL is the base URL of the actor platform API.
	DefaultBaseURL = "https://api.apify.com/v2"

	// DefaultActorID is the transcript-scraper actor used when none is
	// configured.
	DefaultActorID = "pintostudio~youtube-transcript-scraper"

	// DefaultTimeout is the per-request HTTP timeout. Run completion is
	// bounded separately by the polling budget.
	DefaultTimeout = 30 * time.Second
)

// terminal actor run statuses
var terminalRunStatuses = map[string]bool{
	"SUCCEEDED": true,
	"FAILED":    true,
	"ABORTED":   true,
	"TIMED-OUT": true,
}

// Client drives the extraction actor: start a run, poll it to a terminal
// status, then page the run's dataset. It implements
// interfaces.TranscriptClient.
type Client struct {
	baseURL         string
	token           string
	actorID         string
	pollInterval    time.Duration
	maxPollAttempts int
	datasetPageSize int
	datasetMaxItems int
	httpClient      *http.Client
	logger          arbor.ILogger
}

// NewClient builds a Client from configuration. Zero-valued tuning fields
// fall back to the package defaults.
func NewClient(cfg common.TranscriptConfig, logger arbor.ILogger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	actorID := cfg.ActorID
	if actorID == "" {
		actorID = DefaultActorID
	}

	pollInterval := 3 * time.Second
	if d, err := time.ParseDuration(cfg.PollInterval); err == nil && d >= time.Second {
		pollInterval = d
	}
	maxPollAttempts := cfg.MaxPollAttempts
	if maxPollAttempts < 1 {
		maxPollAttempts = 60
	}
	pageSize := cfg.DatasetPageSize
	if pageSize < 1 {
		pageSize = 500
	}
	maxItems := cfg.DatasetMaxItems
	if maxItems < pageSize {
		maxItems = 10000
	}

	return &Client{
		baseURL:         baseURL,
		token:           cfg.Token,
		actorID:         actorID,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		datasetPageSize: pageSize,
		datasetMaxItems: maxItems,
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		logger:          logger,
	}
}

// actorRun mirrors the platform's run record. Responses arrive either bare
// or wrapped in a "data" envelope.
type actorRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
	OutputDatasetID  string `json:"outputDatasetId"`
}

func (r *actorRun) datasetID() string {
	if r.DefaultDatasetID != "" {
		return r.DefaultDatasetID
	}
	return r.OutputDatasetID
}

type runEnvelope struct {
	Data *actorRun `json:"data"`
	actorRun
}

func (e *runEnvelope) run() *actorRun {
	if e.Data != nil {
		return e.Data
	}
	return &e.actorRun
}

// FetchTranscript runs the extraction actor for a video and returns the
// normalized segments. A run that produces no dataset yields (nil, nil).
func (c *Client) FetchTranscript(ctx context.Context, videoID string) (*interfaces.TranscriptResult, error) {
	if c.token == "" {
		return nil, fmt.Errorf("transcript service token not configured")
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	c.logger.Info().
		Str("video_id", videoID).
		Str("actor_id", c.actorID).
		Msg("Starting transcript extraction run")

	run, err := c.startRun(ctx, map[string]interface{}{"videoUrl": videoURL})
	if err != nil {
		return nil, err
	}

	datasetID := run.datasetID()
	for attempt := 0; attempt < c.maxPollAttempts && !terminalRunStatuses[run.Status]; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		run, err = c.getRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		if datasetID == "" {
			datasetID = run.datasetID()
		}
	}

	if datasetID == "" {
		datasetID = run.datasetID()
	}
	if datasetID == "" {
		c.logger.Warn().
			Str("video_id", videoID).
			Str("run_id", run.ID).
			Str("run_status", run.Status).
			Msg("Extraction run finished without a dataset")
		return nil, nil
	}

	items, err := c.fetchDatasetItems(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	segments := NormalizeItems(items)

	c.logger.Info().
		Str("video_id", videoID).
		Str("run_id", run.ID).
		Str("run_status", run.Status).
		Int("raw_items", len(items)).
		Int("segments", len(segments)).
		Msg("Transcript dataset fetched")

	if len(segments) == 0 {
		return nil, nil
	}

	return &interfaces.TranscriptResult{
		Segments: segments,
		RunID:    run.ID,
	}, nil
}

func (c *Client) startRun(ctx context.Context, input map[string]interface{}) (*actorRun, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run input: %w", err)
	}

	reqURL := fmt.Sprintf("%s/acts/%s/runs?token=%s", c.baseURL, c.actorID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope runEnvelope
	if err := c.do(req, &envelope); err != nil {
		return nil, fmt.Errorf("failed to start extraction run: %w", err)
	}

	return envelope.run(), nil
}

func (c *Client) getRun(ctx context.Context, runID string) (*actorRun, error) {
	reqURL := fmt.Sprintf("%s/actor-runs/%s?token=%s", c.baseURL, runID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var envelope runEnvelope
	if err := c.do(req, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch extraction run: %w", err)
	}

	return envelope.run(), nil
}

// fetchDatasetItems pages through the run's dataset up to the configured
// item ceiling.
func (c *Client) fetchDatasetItems(ctx context.Context, datasetID string) ([]interface{}, error) {
	allItems := make([]interface{}, 0)

	for offset := 0; offset < c.datasetMaxItems; offset += c.datasetPageSize {
		params := url.Values{}
		params.Set("token", c.token)
		params.Set("clean", "1")
		params.Set("format", "json")
		params.Set("limit", fmt.Sprintf("%d", c.datasetPageSize))
		params.Set("offset", fmt.Sprintf("%d", offset))

		reqURL := fmt.Sprintf("%s/datasets/%s/items?%s", c.baseURL, datasetID, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		var pageItems []interface{}
		if err := c.do(req, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to fetch dataset page: %w", err)
		}
		if len(pageItems) == 0 {
			break
		}

		allItems = append(allItems, pageItems...)

		if len(pageItems) < c.datasetPageSize {
			break
		}
	}

	return allItems, nil
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
