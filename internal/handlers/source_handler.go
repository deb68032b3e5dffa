package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
)

// SourceHandler handles HTTP requests for tracked sources
type SourceHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewSourceHandler creates a new SourceHandler
func NewSourceHandler(storage interfaces.StorageManager, logger arbor.ILogger) *SourceHandler {
	return &SourceHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/sources
func (h *SourceHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := &interfaces.SourceListOptions{
		Status: models.SourceStatus(r.URL.Query().Get("status")),
		Type:   models.SourceType(r.URL.Query().Get("type")),
		Limit:  QueryInt(r, "limit", 50),
	}

	sources, err := h.storage.SourceStorage().List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

// GetHandler handles GET /api/sources/{id}
func (h *SourceHandler) GetHandler(w http.ResponseWriter, r *http.Request, sourceID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	source, err := h.storage.SourceStorage().GetByID(r.Context(), sourceID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if source == nil {
		WriteError(w, http.StatusNotFound, "source not found")
		return
	}

	WriteJSON(w, http.StatusOK, source)
}

type sourcePatchRequest struct {
	ScanEnabled   *bool   `json:"scan_enabled,omitempty"`
	ScanFrequency *string `json:"scan_frequency,omitempty"`
	Status        *string `json:"status,omitempty"`
	DisplayName   *string `json:"display_name,omitempty"`
}

// PatchHandler handles PATCH /api/sources/{id}. Pause/resume goes through
// scan_enabled and status; cadence through scan_frequency.
func (h *SourceHandler) PatchHandler(w http.ResponseWriter, r *http.Request, sourceID string) {
	if !RequireMethod(w, r, "PATCH") {
		return
	}

	var req sourcePatchRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	source, err := h.storage.SourceStorage().GetByID(r.Context(), sourceID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if source == nil {
		WriteError(w, http.StatusNotFound, "source not found")
		return
	}
	if source.Status == models.SourceStatusDeleted {
		WriteError(w, http.StatusGone, "source has been deleted")
		return
	}

	if req.ScanFrequency != nil {
		frequency := models.ScanFrequency(*req.ScanFrequency)
		switch frequency {
		case models.ScanFrequencyDaily, models.ScanFrequencyWeekly, models.ScanFrequencyManual:
			source.ScanFrequency = frequency
		default:
			WriteError(w, http.StatusBadRequest, "invalid scan_frequency: "+*req.ScanFrequency)
			return
		}
	}
	if req.Status != nil {
		status := models.SourceStatus(*req.Status)
		switch status {
		case models.SourceStatusActive, models.SourceStatusPaused:
			source.Status = status
		default:
			WriteError(w, http.StatusBadRequest, "invalid status: "+*req.Status)
			return
		}
	}
	if req.ScanEnabled != nil {
		source.ScanEnabled = *req.ScanEnabled
	}
	if req.DisplayName != nil {
		source.DisplayName = *req.DisplayName
	}

	if err := h.storage.SourceStorage().Update(r.Context(), source); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().
		Str("source_id", sourceID).
		Str("status", string(source.Status)).
		Bool("scan_enabled", source.ScanEnabled).
		Msg("Source updated")

	WriteJSON(w, http.StatusOK, source)
}

// DeleteHandler handles DELETE /api/sources/{id}. Soft delete only; episodes
// and fragments remain queryable.
func (h *SourceHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, sourceID string) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	source, err := h.storage.SourceStorage().GetByID(r.Context(), sourceID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if source == nil {
		WriteError(w, http.StatusNotFound, "source not found")
		return
	}

	if err := h.storage.SourceStorage().SoftDelete(r.Context(), sourceID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"id":     sourceID,
	})
}
