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

// KeywordStorage implements the KeywordStorage interface for Badger
type KeywordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKeywordStorage creates a new KeywordStorage instance
func NewKeywordStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KeywordStorage {
	return &KeywordStorage{
		db:     db,
		logger: logger,
	}
}

func (s *KeywordStorage) Save(ctx context.Context, keyword *models.KeywordConfig) error {
	keyword.Keyword = models.NormalizeKeyword(keyword.Keyword)
	if keyword.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}

	now := time.Now()

	existing, err := s.GetByKeyword(ctx, keyword.Keyword)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Category = keyword.Category
		existing.Priority = keyword.Priority
		existing.Active = keyword.Active
		existing.UpdatedAt = now
		if err := s.db.Store().Update(existing.ID, existing); err != nil {
			return fmt.Errorf("failed to update keyword: %w", err)
		}
		*keyword = *existing
		return nil
	}

	if keyword.ID == "" {
		keyword.ID = common.NewKeywordID()
	}
	if keyword.Priority == "" {
		keyword.Priority = models.KeywordPriorityMedium
	}
	keyword.CreatedAt = now
	keyword.UpdatedAt = now
	if err := s.db.Store().Insert(keyword.ID, keyword); err != nil {
		return fmt.Errorf("failed to insert keyword: %w", err)
	}
	return nil
}

func (s *KeywordStorage) GetByKeyword(ctx context.Context, keyword string) (*models.KeywordConfig, error) {
	var keywords []models.KeywordConfig
	if err := s.db.Store().Find(&keywords,
		badgerhold.Where("Keyword").Eq(models.NormalizeKeyword(keyword))); err != nil {
		return nil, fmt.Errorf("failed to find keyword: %w", err)
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	return &keywords[0], nil
}

func (s *KeywordStorage) List(ctx context.Context, activeOnly bool) ([]*models.KeywordConfig, error) {
	query := badgerhold.Where("Keyword").Ne("")
	if activeOnly {
		query = query.And("Active").Eq(true)
	}
	query = query.SortBy("Keyword")

	var keywords []models.KeywordConfig
	if err := s.db.Store().Find(&keywords, query); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	result := make([]*models.KeywordConfig, len(keywords))
	for i := range keywords {
		result[i] = &keywords[i]
	}
	return result, nil
}

func (s *KeywordStorage) ActiveKeywords(ctx context.Context) ([]string, error) {
	keywords, err := s.List(ctx, true)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		result = append(result, kw.Keyword)
	}
	return result, nil
}

func (s *KeywordStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.KeywordConfig{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("keyword not found: %s", id)
		}
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return nil
}
