package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	storage   interfaces.StorageManager
	logger    arbor.ILogger
	startedAt time.Time
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(storage interfaces.StorageManager, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage:   storage,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	status := map[string]interface{}{
		"status":  "running",
		"version": common.GetVersion(),
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	}

	if sources, err := h.storage.SourceStorage().List(ctx, &interfaces.SourceListOptions{
		Status: models.SourceStatusActive,
	}); err == nil {
		status["active_sources"] = len(sources)
	}
	if episodes, err := h.storage.EpisodeStorage().List(ctx, &interfaces.EpisodeListOptions{}); err == nil {
		status["episodes"] = len(episodes)
		withMentions := 0
		for _, episode := range episodes {
			if episode.HasMentions {
				withMentions++
			}
		}
		status["episodes_with_mentions"] = withMentions
	}

	WriteJSON(w, http.StatusOK, status)
}
