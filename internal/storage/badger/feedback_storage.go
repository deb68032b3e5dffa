package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FeedbackStorage implements the FeedbackStorage interface for Badger.
// The feedback table is append-only; aggregates live on the fragment.
type FeedbackStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFeedbackStorage creates a new FeedbackStorage instance
func NewFeedbackStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FeedbackStorage {
	return &FeedbackStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FeedbackStorage) Append(ctx context.Context, feedback *models.Feedback) error {
	if feedback.FragmentID == "" {
		return fmt.Errorf("feedback fragment ID is required")
	}
	if feedback.ID == "" {
		feedback.ID = common.NewFeedbackID()
	}
	if feedback.SubmittedAt.IsZero() {
		feedback.SubmittedAt = time.Now()
	}
	if err := s.db.Store().Insert(feedback.ID, feedback); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStorage) ListByFragment(ctx context.Context, fragmentID string) ([]*models.Feedback, error) {
	var entries []models.Feedback
	query := badgerhold.Where("FragmentID").Eq(fragmentID).SortBy("SubmittedAt")
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	result := make([]*models.Feedback, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}
