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

// SourceStorage implements the SourceStorage interface for Badger
type SourceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSourceStorage creates a new SourceStorage instance
func NewSourceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SourceStorage {
	return &SourceStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SourceStorage) Upsert(ctx context.Context, source *models.Source) (*models.Source, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	existing, err := s.GetByExternalID(ctx, source.ExternalID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		source.ID = common.NewSourceID()
		source.Status = models.SourceStatusActive
		source.ScanEnabled = true
		source.AddedAt = now
		source.UpdatedAt = now
		if err := s.db.Store().Insert(source.ID, source); err != nil {
			return nil, fmt.Errorf("failed to insert source: %w", err)
		}
		return source, nil
	}

	// Metadata refresh; scan configuration and lifecycle state are preserved.
	existing.Title = source.Title
	existing.Description = source.Description
	existing.ThumbnailURL = source.ThumbnailURL
	existing.SubscriberCount = source.SubscriberCount
	existing.VideoCount = source.VideoCount
	existing.CustomURL = source.CustomURL
	existing.ChannelID = source.ChannelID
	existing.ChannelTitle = source.ChannelTitle
	existing.ItemCount = source.ItemCount
	existing.OriginalURL = source.OriginalURL
	if source.DisplayName != "" {
		existing.DisplayName = source.DisplayName
	}
	if existing.Status == models.SourceStatusError {
		existing.Status = models.SourceStatusActive
		existing.ErrorMessage = ""
	}
	existing.UpdatedAt = now

	if err := s.db.Store().Update(existing.ID, existing); err != nil {
		return nil, fmt.Errorf("failed to update source: %w", err)
	}
	return existing, nil
}

func (s *SourceStorage) GetByID(ctx context.Context, id string) (*models.Source, error) {
	var source models.Source
	if err := s.db.Store().Get(id, &source); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

func (s *SourceStorage) GetByExternalID(ctx context.Context, externalID string) (*models.Source, error) {
	var sources []models.Source
	if err := s.db.Store().Find(&sources, badgerhold.Where("ExternalID").Eq(externalID)); err != nil {
		return nil, fmt.Errorf("failed to find source by external ID: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return &sources[0], nil
}

func (s *SourceStorage) List(ctx context.Context, opts *interfaces.SourceListOptions) ([]*models.Source, error) {
	query := badgerhold.Where("ID").Ne("")

	if opts != nil {
		if opts.Status != "" {
			query = query.And("Status").Eq(opts.Status)
		}
		if opts.Type != "" {
			query = query.And("Type").Eq(opts.Type)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}
	query = query.SortBy("AddedAt").Reverse()

	var sources []models.Source
	if err := s.db.Store().Find(&sources, query); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	result := make([]*models.Source, len(sources))
	for i := range sources {
		result[i] = &sources[i]
	}
	return result, nil
}

func (s *SourceStorage) Update(ctx context.Context, source *models.Source) error {
	if source.ID == "" {
		return fmt.Errorf("source ID is required")
	}
	source.UpdatedAt = time.Now()
	if err := s.db.Store().Update(source.ID, source); err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	return nil
}

func (s *SourceStorage) MarkScanned(ctx context.Context, id string) error {
	source, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("source not found: %s", id)
	}
	now := time.Now()
	source.LastScanAt = &now
	return s.Update(ctx, source)
}

func (s *SourceStorage) SoftDelete(ctx context.Context, id string) error {
	source, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("source not found: %s", id)
	}
	source.Status = models.SourceStatusDeleted
	source.ScanEnabled = false
	return s.Update(ctx, source)
}
