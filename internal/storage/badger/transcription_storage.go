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

// TranscriptionStorage implements the TranscriptionStorage interface for Badger
type TranscriptionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTranscriptionStorage creates a new TranscriptionStorage instance
func NewTranscriptionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TranscriptionStorage {
	return &TranscriptionStorage{
		db:     db,
		logger: logger,
	}
}

// Replace stores the transcription for its episode, deleting any prior record
// first. Stored transcriptions are immutable; a re-fetch replaces wholesale.
func (s *TranscriptionStorage) Replace(ctx context.Context, transcription *models.Transcription) error {
	if transcription.EpisodeID == "" {
		return fmt.Errorf("transcription episode ID is required")
	}

	if err := s.db.Store().DeleteMatching(&models.Transcription{},
		badgerhold.Where("EpisodeID").Eq(transcription.EpisodeID)); err != nil {
		return fmt.Errorf("failed to delete prior transcription: %w", err)
	}

	if transcription.ID == "" {
		transcription.ID = common.NewTranscriptionID()
	}
	if transcription.FetchedAt.IsZero() {
		transcription.FetchedAt = time.Now()
	}

	if err := s.db.Store().Insert(transcription.ID, transcription); err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	return nil
}

func (s *TranscriptionStorage) GetByEpisodeID(ctx context.Context, episodeID string) (*models.Transcription, error) {
	var transcriptions []models.Transcription
	if err := s.db.Store().Find(&transcriptions, badgerhold.Where("EpisodeID").Eq(episodeID)); err != nil {
		return nil, fmt.Errorf("failed to find transcription: %w", err)
	}
	if len(transcriptions) == 0 {
		return nil, nil
	}
	return &transcriptions[0], nil
}
