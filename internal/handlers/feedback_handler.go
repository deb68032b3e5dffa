package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/feedback"
)

// FeedbackHandler handles HTTP requests for fragment feedback
type FeedbackHandler struct {
	service *feedback.Service
	logger  arbor.ILogger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(service *feedback.Service, logger arbor.ILogger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger,
	}
}

type feedbackRequest struct {
	FragmentID     string   `json:"fragment_id"`
	Rating         string   `json:"rating"`
	Issues         []string `json:"issues,omitempty"`
	Comment        string   `json:"comment,omitempty"`
	RelevanceScore *int     `json:"relevance_score,omitempty"`
	QualityScore   *int     `json:"quality_score,omitempty"`
	SubmittedBy    string   `json:"submitted_by,omitempty"`
}

// SubmitHandler handles POST /api/feedback
func (h *FeedbackHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req feedbackRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.FragmentID == "" {
		WriteError(w, http.StatusBadRequest, "fragment_id is required")
		return
	}

	rating := models.Rating(req.Rating)
	switch rating {
	case models.RatingUseful, models.RatingNotUseful, models.RatingIrrelevant:
	default:
		WriteError(w, http.StatusBadRequest, "invalid rating: "+req.Rating)
		return
	}

	issues := make([]models.IssueTag, 0, len(req.Issues))
	for _, issue := range req.Issues {
		issues = append(issues, models.IssueTag(issue))
	}

	result, err := h.service.Submit(r.Context(), &feedback.Submission{
		FragmentID:     req.FragmentID,
		Rating:         rating,
		Issues:         issues,
		Comment:        req.Comment,
		RelevanceScore: req.RelevanceScore,
		QualityScore:   req.QualityScore,
		SubmittedBy:    req.SubmittedBy,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// StatsHandler handles GET /api/episodes/{id}/feedback/stats
func (h *FeedbackHandler) StatsHandler(w http.ResponseWriter, r *http.Request, episodeID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.service.StatsForEpisode(r.Context(), episodeID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
