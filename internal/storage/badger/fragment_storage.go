package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FragmentStorage implements the FragmentStorage interface for Badger
type FragmentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFragmentStorage creates a new FragmentStorage instance
func NewFragmentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FragmentStorage {
	return &FragmentStorage{
		db:     db,
		logger: logger,
	}
}

// ReplaceForEpisode swaps the episode's fragment set inside one transaction.
// Delete-all-then-insert guarantees no stale fragments survive a
// reprocessing pass.
func (s *FragmentStorage) ReplaceForEpisode(ctx context.Context, episodeID string, fragments []*models.Fragment) error {
	if episodeID == "" {
		return fmt.Errorf("episode ID is required")
	}

	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		if err := s.db.Store().TxDeleteMatching(tx, &models.Fragment{},
			badgerhold.Where("EpisodeID").Eq(episodeID)); err != nil {
			return fmt.Errorf("failed to delete existing fragments: %w", err)
		}
		for _, fragment := range fragments {
			if fragment.ID == "" {
				fragment.ID = common.NewFragmentID()
			}
			fragment.EpisodeID = episodeID
			if err := s.db.Store().TxInsert(tx, fragment.ID, fragment); err != nil {
				return fmt.Errorf("failed to insert fragment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace fragments for episode %s: %w", episodeID, err)
	}

	s.logger.Debug().
		Str("episode_id", episodeID).
		Int("fragments", len(fragments)).
		Msg("Replaced fragment set for episode")

	return nil
}

func (s *FragmentStorage) DeleteForEpisode(ctx context.Context, episodeID string) error {
	if err := s.db.Store().DeleteMatching(&models.Fragment{},
		badgerhold.Where("EpisodeID").Eq(episodeID)); err != nil {
		return fmt.Errorf("failed to delete fragments for episode %s: %w", episodeID, err)
	}
	return nil
}

func (s *FragmentStorage) GetByID(ctx context.Context, id string) (*models.Fragment, error) {
	var fragment models.Fragment
	if err := s.db.Store().Get(id, &fragment); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fragment: %w", err)
	}
	return &fragment, nil
}

// ListByEpisode returns fragments in ascending start-time order
func (s *FragmentStorage) ListByEpisode(ctx context.Context, episodeID string) ([]*models.Fragment, error) {
	var fragments []models.Fragment
	query := badgerhold.Where("EpisodeID").Eq(episodeID).SortBy("StartTime")
	if err := s.db.Store().Find(&fragments, query); err != nil {
		return nil, fmt.Errorf("failed to list fragments: %w", err)
	}

	result := make([]*models.Fragment, len(fragments))
	for i := range fragments {
		result[i] = &fragments[i]
	}
	return result, nil
}

func (s *FragmentStorage) Update(ctx context.Context, fragment *models.Fragment) error {
	if fragment.ID == "" {
		return fmt.Errorf("fragment ID is required")
	}
	if err := s.db.Store().Update(fragment.ID, fragment); err != nil {
		return fmt.Errorf("failed to update fragment: %w", err)
	}
	return nil
}
