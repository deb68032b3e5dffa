package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/jobs"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/scan"
)

// ScanHandler handles HTTP requests for source scanning
type ScanHandler struct {
	ingestor *scan.Ingestor
	jobs     *jobs.Manager
	logger   arbor.ILogger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(ingestor *scan.Ingestor, jobManager *jobs.Manager, logger arbor.ILogger) *ScanHandler {
	return &ScanHandler{
		ingestor: ingestor,
		jobs:     jobManager,
		logger:   logger,
	}
}

type scanRequest struct {
	Reference     string `json:"reference"`
	ScanFrequency string `json:"scan_frequency,omitempty"`
	RequestedBy   string `json:"requested_by,omitempty"`
}

// StartScanHandler handles POST /api/scan. The scan runs in a goroutine; the
// response carries the job id for progress polling.
func (h *ScanHandler) StartScanHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req scanRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Reference) == "" {
		WriteError(w, http.StatusBadRequest, "reference is required")
		return
	}

	parsed, err := scan.ResolveReference(req.Reference)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	frequency := models.ScanFrequency(req.ScanFrequency)
	if frequency == "" {
		frequency = models.ScanFrequencyManual
	}
	switch frequency {
	case models.ScanFrequencyDaily, models.ScanFrequencyWeekly, models.ScanFrequencyManual:
	default:
		WriteError(w, http.StatusBadRequest, "invalid scan_frequency: "+req.ScanFrequency)
		return
	}

	active, err := h.jobs.ActiveForTarget(r.Context(), models.TargetTypeSource, parsed.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "queued",
			"job_id": active.ID,
		})
		return
	}

	job, err := h.jobs.Create(r.Context(), models.JobTypeFetchEpisodes, models.TargetTypeSource, parsed.ID, jobs.CreateOptions{
		CreatedBy: req.RequestedBy,
		Parameters: map[string]interface{}{
			"reference": req.Reference,
			"type":      parsed.Type,
		},
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go func() {
		if _, err := h.ingestor.Run(context.Background(), job.ID, parsed, frequency, req.RequestedBy); err != nil {
			h.logger.Error().
				Err(err).
				Str("job_id", job.ID).
				Msg("Scan failed")
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":      "started",
		"job_id":      job.ID,
		"source_type": parsed.Type,
	})
}
