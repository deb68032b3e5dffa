package models

import (
	"strings"
	"time"
)

// KeywordPriority orders keywords for configuration screens
type KeywordPriority string

const (
	KeywordPriorityHigh   KeywordPriority = "high"
	KeywordPriorityMedium KeywordPriority = "medium"
	KeywordPriorityLow    KeywordPriority = "low"
)

// KeywordConfig is one configured detection keyword. Keyword is normalized
// (lowercased, trimmed) and unique. Read-only input to the matcher.
type KeywordConfig struct {
	ID       string          `json:"id" badgerhold:"key"`
	Keyword  string          `json:"keyword" badgerhold:"unique"`
	Category string          `json:"category,omitempty"`
	Priority KeywordPriority `json:"priority"`
	Active   bool            `json:"active" badgerhold:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeKeyword lowercases and trims a keyword for storage
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
