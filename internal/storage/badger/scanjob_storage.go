package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ScanJobStorage implements the ScanJobStorage interface for Badger
type ScanJobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanJobStorage creates a new ScanJobStorage instance
func NewScanJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanJobStorage {
	return &ScanJobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanJobStorage) Create(ctx context.Context, job *models.ScanJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Insert(job.ID, job); err != nil {
		return fmt.Errorf("failed to insert scan job: %w", err)
	}
	return nil
}

func (s *ScanJobStorage) GetByID(ctx context.Context, id string) (*models.ScanJob, error) {
	var job models.ScanJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scan job: %w", err)
	}
	return &job, nil
}

func (s *ScanJobStorage) Update(ctx context.Context, job *models.ScanJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Update(job.ID, job); err != nil {
		return fmt.Errorf("failed to update scan job: %w", err)
	}
	return nil
}

// GetActiveForTarget returns the most recent pending/running job for the
// target, or nil when none exists.
func (s *ScanJobStorage) GetActiveForTarget(ctx context.Context, targetType models.TargetType, targetID string) (*models.ScanJob, error) {
	var jobs []models.ScanJob
	query := badgerhold.Where("TargetType").Eq(targetType).
		And("TargetID").Eq(targetID).
		And("Status").In(models.JobStatusPending, models.JobStatusRunning).
		SortBy("ScheduledAt").Reverse()
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query active jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (s *ScanJobStorage) ListByTarget(ctx context.Context, targetType models.TargetType, targetID string, limit int) ([]*models.ScanJob, error) {
	if limit <= 0 {
		limit = 10
	}
	var jobs []models.ScanJob
	query := badgerhold.Where("TargetType").Eq(targetType).
		And("TargetID").Eq(targetID).
		SortBy("ScheduledAt").Reverse().
		Limit(limit)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	result := make([]*models.ScanJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}
