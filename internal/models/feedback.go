package models

import "time"

// Rating is a human judgement on a fragment
type Rating string

const (
	RatingUseful     Rating = "useful"
	RatingNotUseful  Rating = "not_useful"
	RatingIrrelevant Rating = "irrelevant"
)

// Positive reports whether the rating counts toward positive feedback.
// Everything that is not "useful" counts as negative.
func (r Rating) Positive() bool {
	return r == RatingUseful
}

// IssueTag labels a recurring problem reported with a fragment
type IssueTag string

const (
	IssueFalsePositive  IssueTag = "false_positive"
	IssueWrongCategory  IssueTag = "wrong_category"
	IssuePoorContext    IssueTag = "poor_context"
	IssueIncompleteText IssueTag = "incomplete_text"
	IssueTimingOff      IssueTag = "timing_off"
	IssueOther          IssueTag = "other"
)

// ValidIssueTags lists every accepted issue tag
var ValidIssueTags = []IssueTag{
	IssueFalsePositive,
	IssueWrongCategory,
	IssuePoorContext,
	IssueIncompleteText,
	IssueTimingOff,
	IssueOther,
}

// Feedback is one human rating on a fragment. Append-only; fragment aggregates
// are recomputed from the full history on each submission.
type Feedback struct {
	ID         string `json:"id" badgerhold:"key"`
	FragmentID string `json:"fragment_id" badgerhold:"index"`

	Rating         Rating     `json:"rating"`
	Issues         []IssueTag `json:"issues,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	RelevanceScore *int       `json:"relevance_score,omitempty"`
	QualityScore   *int       `json:"quality_score,omitempty"`

	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}
