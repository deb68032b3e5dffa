package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/detect"
	"github.com/ternarybob/ausculto/internal/services/ranking"
	"github.com/ternarybob/ausculto/internal/services/transcribe"
)

// EpisodeHandler handles HTTP requests for episodes and their fragments
type EpisodeHandler struct {
	storage    interfaces.StorageManager
	detector   *detect.Runner
	transcribe *transcribe.Service
	logger     arbor.ILogger
}

// NewEpisodeHandler creates a new EpisodeHandler
func NewEpisodeHandler(storage interfaces.StorageManager, detector *detect.Runner, transcribeService *transcribe.Service, logger arbor.ILogger) *EpisodeHandler {
	return &EpisodeHandler{
		storage:    storage,
		detector:   detector,
		transcribe: transcribeService,
		logger:     logger,
	}
}

// ListHandler handles GET /api/episodes
func (h *EpisodeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := &interfaces.EpisodeListOptions{
		SourceID: r.URL.Query().Get("source_id"),
		Status:   models.EpisodeStatus(r.URL.Query().Get("status")),
		Limit:    QueryInt(r, "limit", 50),
	}
	if r.URL.Query().Has("has_mentions") {
		hasMentions := QueryBool(r, "has_mentions")
		opts.HasMentions = &hasMentions
	}

	episodes, err := h.storage.EpisodeStorage().List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"episodes": episodes,
		"count":    len(episodes),
	})
}

// GetHandler handles GET /api/episodes/{id}
func (h *EpisodeHandler) GetHandler(w http.ResponseWriter, r *http.Request, episodeID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	episode, err := h.storage.EpisodeStorage().GetByID(r.Context(), episodeID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if episode == nil {
		WriteError(w, http.StatusNotFound, "episode not found")
		return
	}

	WriteJSON(w, http.StatusOK, episode)
}

// rankedFragment pairs a fragment with its read-time rank score
type rankedFragment struct {
	*models.Fragment
	RankScore float64 `json:"rank_score"`
}

// FragmentsHandler handles GET /api/episodes/{id}/fragments. Fragments are
// ordered by rank score recomputed from the stored feedback counters.
func (h *EpisodeHandler) FragmentsHandler(w http.ResponseWriter, r *http.Request, episodeID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	fragments, err := h.storage.FragmentStorage().ListByEpisode(r.Context(), episodeID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ranked := make([]rankedFragment, 0, len(fragments))
	for _, fragment := range fragments {
		ranked = append(ranked, rankedFragment{
			Fragment: fragment,
			RankScore: ranking.Score(ranking.Input{
				ConfidenceScore:  fragment.ConfidenceScore,
				FeedbackCount:    fragment.FeedbackCount,
				PositiveFeedback: fragment.PositiveFeedback,
				NegativeFeedback: fragment.NegativeFeedback,
			}),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankScore > ranked[j].RankScore
	})

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fragments": ranked,
		"count":     len(ranked),
	})
}

type detectRequest struct {
	Force       bool   `json:"force,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// DetectHandler handles POST /api/episodes/{id}/detect
func (h *EpisodeHandler) DetectHandler(w http.ResponseWriter, r *http.Request, episodeID string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req detectRequest
	if r.ContentLength > 0 {
		if err := ReadJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.detector.Start(r.Context(), episodeID, req.Force, req.RequestedBy)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !result.Skipped && !result.Queued {
		go func() {
			if err := h.detector.Process(context.Background(), result.JobID, episodeID); err != nil {
				h.logger.Error().
					Err(err).
					Str("job_id", result.JobID).
					Str("episode_id", episodeID).
					Msg("Detection failed")
			}
		}()
	}

	status := http.StatusAccepted
	if result.Skipped || result.Queued {
		status = http.StatusOK
	}
	WriteJSON(w, status, result)
}

// TranscriptHandler handles POST /api/episodes/{id}/transcript
func (h *EpisodeHandler) TranscriptHandler(w http.ResponseWriter, r *http.Request, episodeID string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req detectRequest
	if r.ContentLength > 0 {
		if err := ReadJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.transcribe.Start(r.Context(), episodeID, req.Force, req.RequestedBy)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !result.Queued {
		go func() {
			if err := h.transcribe.Process(context.Background(), result.JobID, episodeID); err != nil {
				h.logger.Error().
					Err(err).
					Str("job_id", result.JobID).
					Str("episode_id", episodeID).
					Msg("Transcript fetch failed")
			}
		}()
	}

	status := http.StatusAccepted
	if result.Queued {
		status = http.StatusOK
	}
	WriteJSON(w, status, result)
}
