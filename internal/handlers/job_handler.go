package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
)

// JobHandler handles HTTP requests for scan job progress
type JobHandler struct {
	jobs   *jobs.Manager
	logger arbor.ILogger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobManager *jobs.Manager, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		jobs:   jobManager,
		logger: logger,
	}
}

// GetHandler handles GET /api/jobs/{id}
func (h *JobHandler) GetHandler(w http.ResponseWriter, r *http.Request, jobID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// ListHandler handles GET /api/jobs?target_type=...&target_id=...
func (h *JobHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	targetType := models.TargetType(r.URL.Query().Get("target_type"))
	targetID := r.URL.Query().Get("target_id")
	if targetType == "" || targetID == "" {
		WriteError(w, http.StatusBadRequest, "target_type and target_id are required")
		return
	}

	jobList, err := h.jobs.ListForTarget(r.Context(), targetType, targetID, QueryInt(r, "limit", 10))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobList,
		"count": len(jobList),
	})
}
