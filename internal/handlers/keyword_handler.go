package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/detect"
)

// KeywordHandler handles HTTP requests for keyword configuration
type KeywordHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewKeywordHandler creates a new KeywordHandler
func NewKeywordHandler(storage interfaces.StorageManager, logger arbor.ILogger) *KeywordHandler {
	return &KeywordHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/keywords. The response flags whether the
// matcher is currently running on the compiled fallback list.
func (h *KeywordHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	activeOnly := QueryBool(r, "active_only")
	keywords, err := h.storage.KeywordStorage().List(r.Context(), activeOnly)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"keywords":       keywords,
		"count":          len(keywords),
		"using_fallback": len(keywords) == 0,
		"fallback_size":  len(detect.FallbackKeywords),
	})
}

type keywordRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// CreateHandler handles POST /api/keywords
func (h *KeywordHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req keywordRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	normalized := models.NormalizeKeyword(req.Keyword)
	if normalized == "" {
		WriteError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	priority := models.KeywordPriority(req.Priority)
	if priority == "" {
		priority = models.KeywordPriorityMedium
	}
	switch priority {
	case models.KeywordPriorityHigh, models.KeywordPriorityMedium, models.KeywordPriorityLow:
	default:
		WriteError(w, http.StatusBadRequest, "invalid priority: "+req.Priority)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	keyword := &models.KeywordConfig{
		Keyword:  normalized,
		Category: req.Category,
		Priority: priority,
		Active:   active,
	}

	if err := h.storage.KeywordStorage().Save(r.Context(), keyword); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, keyword)
}

// DeleteHandler handles DELETE /api/keywords/{id}
func (h *KeywordHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, keywordID string) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	if err := h.storage.KeywordStorage().Delete(r.Context(), keywordID); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"id":     keywordID,
	})
}
