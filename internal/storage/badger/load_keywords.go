package badger

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/ausculto/internal/models"
	"gopkg.in/yaml.v3"
)

// KeywordSeedFile is the YAML structure of an optional keyword seed file.
// Format:
//
//	keywords:
//	  - keyword: "terapia"
//	    category: "general"
//	    priority: "high"
type KeywordSeedFile struct {
	Keywords []KeywordSeedEntry `yaml:"keywords"`
}

// KeywordSeedEntry is one keyword definition in the seed file
type KeywordSeedEntry struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
}

// LoadKeywordsFromFile seeds the keyword store from a YAML file. Keywords
// already present in the store are left untouched so operator edits survive
// restarts. A missing file is not an error.
func (m *Manager) LoadKeywordsFromFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug().Str("file", path).Msg("Keyword seed file not found, skipping")
			return nil
		}
		return fmt.Errorf("failed to read keyword seed file: %w", err)
	}

	var seed KeywordSeedFile
	if err := yaml.Unmarshal(content, &seed); err != nil {
		return fmt.Errorf("failed to parse keyword seed file %s: %w", path, err)
	}

	loaded := 0
	skipped := 0
	for _, entry := range seed.Keywords {
		normalized := models.NormalizeKeyword(entry.Keyword)
		if normalized == "" {
			continue
		}

		existing, err := m.keyword.GetByKeyword(ctx, normalized)
		if err != nil {
			return err
		}
		if existing != nil {
			skipped++
			continue
		}

		priority := models.KeywordPriority(entry.Priority)
		switch priority {
		case models.KeywordPriorityHigh, models.KeywordPriorityMedium, models.KeywordPriorityLow:
		default:
			priority = models.KeywordPriorityMedium
		}

		if err := m.keyword.Save(ctx, &models.KeywordConfig{
			Keyword:  normalized,
			Category: entry.Category,
			Priority: priority,
			Active:   true,
		}); err != nil {
			return err
		}
		loaded++
	}

	m.logger.Debug().
		Str("file", path).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Finished loading keyword seed file")

	return nil
}
