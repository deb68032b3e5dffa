package models

import "time"

// Theme classifies what kind of mention a fragment contains
type Theme string

const (
	ThemeTestimony      Theme = "testimony"
	ThemeRecommendation Theme = "recommendation"
	ThemeReflection     Theme = "reflection"
	ThemeFact           Theme = "fact"
	ThemeOther          Theme = "other"
)

// Tone classifies the emotional register of a fragment
type Tone string

const (
	TonePositive   Tone = "positive"
	ToneNeutral    Tone = "neutral"
	ToneCritical   Tone = "critical"
	ToneConcerning Tone = "concerning"
)

// Sensitivity flags content requiring careful handling
type Sensitivity string

const (
	SensitivitySelfHarm Sensitivity = "self-harm"
	SensitivitySuicide  Sensitivity = "suicide"
	SensitivityAbuse    Sensitivity = "abuse"
	SensitivityTrauma   Sensitivity = "trauma"
	SensitivityCrisis   Sensitivity = "crisis"
	SensitivityNone     Sensitivity = "none"
)

// ReviewStatus is derived from accumulated feedback on a fragment:
// pending (none), approved (only positive), rejected (only negative),
// reviewed (mixed).
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusReviewed ReviewStatus = "reviewed"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// DetectionMethod records what produced a fragment
type DetectionMethod string

const (
	DetectedByKeywordFilter DetectionMethod = "keyword_filter"
	DetectedByLLMClassifier DetectionMethod = "llm_classifier"
	DetectedByManual        DetectionMethod = "manual"
)

// Classification is the structured verdict returned by the LLM classifier
// for one fragment.
type Classification struct {
	Theme       Theme         `json:"theme" validate:"required,oneof=testimony recommendation reflection fact other"`
	Tone        Tone          `json:"tone" validate:"required,oneof=positive neutral critical concerning"`
	Sensitivity []Sensitivity `json:"sensitivity" validate:"required,min=1,dive,oneof=self-harm suicide abuse trauma crisis none"`
	Confidence  int           `json:"confidence" validate:"min=0,max=100"`
	Tags        []string      `json:"tags,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// Fragment is a short transcript excerpt plus surrounding context, anchored to
// a time range, produced by one keyword hit. Fragments for an episode are
// atomically replaced on each detection run.
type Fragment struct {
	ID              string `json:"id" badgerhold:"key"`
	EpisodeID       string `json:"episode_id" badgerhold:"index"`
	TranscriptionID string `json:"transcription_id"`
	VideoID         string `json:"video_id"`

	Text            string   `json:"text"`
	Context         string   `json:"context"`
	StartTime       int      `json:"start_time"`
	EndTime         int      `json:"end_time"`
	MatchedKeywords []string `json:"matched_keywords"`
	WatchURL        string   `json:"watch_url"`

	Classification  Classification  `json:"classification"`
	ConfidenceScore int             `json:"confidence_score"`
	DetectedBy      DetectionMethod `json:"detected_by"`
	DetectedAt      time.Time       `json:"detected_at"`

	// Feedback aggregates, recomputed from the full feedback history on each
	// submission. No rank is stored; display rank is recomputed at read time
	// from these counters.
	ReviewStatus     ReviewStatus `json:"review_status"`
	FeedbackCount    int          `json:"feedback_count"`
	PositiveFeedback int          `json:"positive_feedback"`
	NegativeFeedback int          `json:"negative_feedback"`
	AverageRating    float64      `json:"average_rating,omitempty"`
}
