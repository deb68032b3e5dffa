// Package jobs owns the asynchronous job lifecycle: creation, status
// transitions, and progress snapshots for the scan and detection runners.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
)

// Manager creates and patches scan jobs. All status transitions flow through
// Patch so the startedAt/completedAt stamping rules live in one place.
type Manager struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewManager creates a job manager.
func NewManager(storage interfaces.StorageManager, logger arbor.ILogger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger,
	}
}

// CreateOptions carries optional fields for job creation.
type CreateOptions struct {
	CreatedBy  string
	Parameters map[string]interface{}
	ItemsTotal int
}

// Create inserts a new pending job for a target.
func (m *Manager) Create(ctx context.Context, jobType models.JobType, targetType models.TargetType, targetID string, opts CreateOptions) (*models.ScanJob, error) {
	createdBy := opts.CreatedBy
	if createdBy == "" {
		createdBy = "system"
	}

	job := &models.ScanJob{
		ID:          common.NewJobID(),
		Type:        jobType,
		TargetType:  targetType,
		TargetID:    targetID,
		Status:      models.JobStatusPending,
		MaxRetries:  models.DefaultMaxRetries,
		CreatedBy:   createdBy,
		Parameters:  opts.Parameters,
		ItemsTotal:  opts.ItemsTotal,
		ScheduledAt: time.Now(),
	}

	if err := m.storage.ScanJobStorage().Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	m.logger.Info().
		Str("job_id", job.ID).
		Str("type", string(jobType)).
		Str("target_type", string(targetType)).
		Str("target_id", targetID).
		Msg("Job created")

	return job, nil
}

// StatusPatch is a partial job update. Nil fields are left untouched.
type StatusPatch struct {
	Status         models.JobStatus
	Progress       *int
	ItemsProcessed *int
	ItemsTotal     *int
	CurrentStep    *string
	ErrorMessage   *string
	Results        map[string]interface{}
}

// Patch applies a status update. StartedAt is stamped on the first transition
// to running, CompletedAt on any terminal transition. A job already in a
// terminal state cannot transition again.
func (m *Manager) Patch(ctx context.Context, jobID string, patch StatusPatch) (*models.ScanJob, error) {
	job, err := m.storage.ScanJobStorage().GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	if patch.Status != "" && patch.Status != job.Status {
		if job.Status.Terminal() {
			return nil, fmt.Errorf("job %s is %s and cannot transition to %s", jobID, job.Status, patch.Status)
		}
		job.Status = patch.Status

		now := time.Now()
		if patch.Status == models.JobStatusRunning && job.StartedAt == nil {
			job.StartedAt = &now
		}
		if patch.Status.Terminal() {
			job.CompletedAt = &now
		}
	}

	if patch.Progress != nil {
		job.Progress = *patch.Progress
	}
	if patch.ItemsProcessed != nil {
		job.ItemsProcessed = *patch.ItemsProcessed
	}
	if patch.ItemsTotal != nil {
		job.ItemsTotal = *patch.ItemsTotal
	}
	if patch.CurrentStep != nil {
		job.CurrentStep = *patch.CurrentStep
	}
	if patch.ErrorMessage != nil {
		job.ErrorMessage = *patch.ErrorMessage
	}
	if patch.Results != nil {
		job.Results = patch.Results
	}

	if err := m.storage.ScanJobStorage().Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return job, nil
}

// MarkFailed transitions a job to failed with an error message. Used from
// runner error paths, so a failure to record the failure is only logged.
func (m *Manager) MarkFailed(ctx context.Context, jobID string, message string) {
	if _, err := m.Patch(ctx, jobID, StatusPatch{
		Status:       models.JobStatusFailed,
		ErrorMessage: &message,
	}); err != nil {
		m.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Msg("Failed to mark job as failed")
	}
}

// Get returns a job by id, nil when absent.
func (m *Manager) Get(ctx context.Context, jobID string) (*models.ScanJob, error) {
	return m.storage.ScanJobStorage().GetByID(ctx, jobID)
}

// ActiveForTarget returns the most recent pending/running job for a target.
func (m *Manager) ActiveForTarget(ctx context.Context, targetType models.TargetType, targetID string) (*models.ScanJob, error) {
	return m.storage.ScanJobStorage().GetActiveForTarget(ctx, targetType, targetID)
}

// ListForTarget returns the most recent jobs for a target.
func (m *Manager) ListForTarget(ctx context.Context, targetType models.TargetType, targetID string, limit int) ([]*models.ScanJob, error) {
	if limit <= 0 {
		limit = 10
	}
	return m.storage.ScanJobStorage().ListByTarget(ctx, targetType, targetID, limit)
}

// IntPtr is a convenience for building patches.
func IntPtr(v int) *int { return &v }

// StrPtr is a convenience for building patches.
func StrPtr(v string) *string { return &v }
