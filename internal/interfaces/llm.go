package interfaces

import (
	"context"

	"github.com/ternarybob/ausculto/internal/models"
)

// ClassificationInput carries one fragment into the LLM classifier
type ClassificationInput struct {
	FragmentText string
	ContextText  string
	Keywords     []string
	Language     string // empty when the transcript language is unknown
}

// Classifier sends a fragment to the external LLM and returns a validated
// structured verdict. A malformed or empty response is a hard failure;
// callers abort the owning detection job rather than skipping the fragment.
type Classifier interface {
	ClassifyFragment(ctx context.Context, input *ClassificationInput) (*models.Classification, error)
}
