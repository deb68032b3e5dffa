// Package feedback records human ratings on fragments and recomputes the
// fragment aggregates and episode-level review statistics that depend on
// them.
package feedback

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
	"github.com/ternarybob/ausculto/internal/services/ranking"
)

// DefaultSubmitter is recorded when a submission carries no submitter.
const DefaultSubmitter = "dashboard_user"

// Service handles feedback submission and aggregation.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a feedback service.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Submission is one incoming rating.
type Submission struct {
	FragmentID     string
	Rating         models.Rating
	Issues         []models.IssueTag
	Comment        string
	RelevanceScore *int
	QualityScore   *int
	SubmittedBy    string
}

// Summary reports the fragment's aggregate state after a submission.
type Summary struct {
	Total         int            `json:"total"`
	Positive      int            `json:"positive"`
	Negative      int            `json:"negative"`
	ApprovalRate  *float64       `json:"approval_rate"`
	AverageRating float64        `json:"average_rating"`
	RankScore     float64        `json:"rank_score"`
	Issues        map[string]int `json:"issues"`
}

// Result is the response to a feedback submission.
type Result struct {
	FeedbackID string   `json:"feedback_id"`
	FragmentID string   `json:"fragment_id"`
	Summary    *Summary `json:"summary"`
}

// Submit appends a rating and recomputes the fragment's aggregates from the
// full feedback history. Aggregates are always derived, never incremented,
// so a replayed submission cannot drift the counters.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*Result, error) {
	fragment, err := s.storage.FragmentStorage().GetByID(ctx, sub.FragmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fragment: %w", err)
	}
	if fragment == nil {
		return nil, fmt.Errorf("fragment not found: %s", sub.FragmentID)
	}

	issues, err := validateIssues(sub.Issues)
	if err != nil {
		return nil, err
	}

	submittedBy := sub.SubmittedBy
	if submittedBy == "" {
		submittedBy = DefaultSubmitter
	}

	record := &models.Feedback{
		ID:             common.NewFeedbackID(),
		FragmentID:     sub.FragmentID,
		Rating:         sub.Rating,
		Issues:         issues,
		Comment:        sub.Comment,
		RelevanceScore: sub.RelevanceScore,
		QualityScore:   sub.QualityScore,
		SubmittedBy:    submittedBy,
		SubmittedAt:    time.Now(),
	}

	if err := s.storage.FeedbackStorage().Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	history, err := s.storage.FeedbackStorage().ListByFragment(ctx, sub.FragmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback history: %w", err)
	}

	total := len(history)
	positive := 0
	for _, entry := range history {
		if entry.Rating.Positive() {
			positive++
		}
	}
	negative := total - positive

	fragment.FeedbackCount = total
	fragment.PositiveFeedback = positive
	fragment.NegativeFeedback = negative
	fragment.ReviewStatus = reviewStatusFrom(positive, negative, total)
	if total > 0 {
		fragment.AverageRating = ranking.Round2(float64(positive) / float64(total) * 5)
	} else {
		fragment.AverageRating = 0
	}

	if err := s.storage.FragmentStorage().Update(ctx, fragment); err != nil {
		return nil, fmt.Errorf("failed to update fragment aggregates: %w", err)
	}

	rankScore := ranking.Score(ranking.Input{
		ConfidenceScore:  fragment.ConfidenceScore,
		FeedbackCount:    total,
		PositiveFeedback: positive,
		NegativeFeedback: negative,
	})

	s.logger.Info().
		Str("fragment_id", fragment.ID).
		Str("rating", string(sub.Rating)).
		Int("feedback_count", total).
		Str("review_status", string(fragment.ReviewStatus)).
		Msg("Feedback recorded")

	var approvalRate *float64
	if total > 0 {
		rate := ranking.Round3(float64(positive) / float64(total))
		approvalRate = &rate
	}

	return &Result{
		FeedbackID: record.ID,
		FragmentID: fragment.ID,
		Summary: &Summary{
			Total:         total,
			Positive:      positive,
			Negative:      negative,
			ApprovalRate:  approvalRate,
			AverageRating: fragment.AverageRating,
			RankScore:     rankScore,
			Issues:        aggregateIssues(history),
		},
	}, nil
}

// reviewStatusFrom derives review status: only-positive approves,
// only-negative rejects, mixed marks reviewed.
func reviewStatusFrom(positive, negative, total int) models.ReviewStatus {
	switch {
	case total == 0:
		return models.ReviewStatusPending
	case positive > 0 && negative == 0:
		return models.ReviewStatusApproved
	case negative > 0 && positive == 0:
		return models.ReviewStatusRejected
	default:
		return models.ReviewStatusReviewed
	}
}

func validateIssues(issues []models.IssueTag) ([]models.IssueTag, error) {
	valid := make(map[models.IssueTag]bool, len(models.ValidIssueTags))
	for _, tag := range models.ValidIssueTags {
		valid[tag] = true
	}

	result := make([]models.IssueTag, 0, len(issues))
	for _, tag := range issues {
		if !valid[tag] {
			return nil, fmt.Errorf("unknown issue tag: %s", tag)
		}
		result = append(result, tag)
	}
	return result, nil
}

func aggregateIssues(entries []*models.Feedback) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		for _, issue := range entry.Issues {
			counts[string(issue)]++
		}
	}
	return counts
}

// IssueCount pairs an issue tag with its occurrence count.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// EpisodeStats summarizes review progress across an episode's fragments.
type EpisodeStats struct {
	TotalFragments        int          `json:"total_fragments"`
	FragmentsWithFeedback int          `json:"fragments_with_feedback"`
	FeedbackCount         int          `json:"feedback_count"`
	PositiveFeedback      int          `json:"positive_feedback"`
	NegativeFeedback      int          `json:"negative_feedback"`
	ApprovalRate          *float64     `json:"approval_rate"`
	CoverageRate          float64      `json:"coverage_rate"`
	AverageConfidence     float64      `json:"average_confidence"`
	AverageRankScore      float64      `json:"average_rank_score"`
	TopIssues             []IssueCount `json:"top_issues"`
	PromptRecommendations []string     `json:"prompt_recommendations"`
}

// StatsForEpisode computes review statistics on demand from the episode's
// fragments and their feedback histories.
func (s *Service) StatsForEpisode(ctx context.Context, episodeID string) (*EpisodeStats, error) {
	fragments, err := s.storage.FragmentStorage().ListByEpisode(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fragments: %w", err)
	}

	stats := &EpisodeStats{
		TopIssues:             []IssueCount{},
		PromptRecommendations: []string{},
	}
	if len(fragments) == 0 {
		return stats, nil
	}

	stats.TotalFragments = len(fragments)

	var accumulatedConfidence float64
	var accumulatedRankScore float64
	issueCounts := make(map[string]int)

	for _, fragment := range fragments {
		accumulatedConfidence += float64(fragment.ConfidenceScore)

		if fragment.FeedbackCount == 0 {
			continue
		}

		stats.FragmentsWithFeedback++
		stats.FeedbackCount += fragment.FeedbackCount
		stats.PositiveFeedback += fragment.PositiveFeedback
		stats.NegativeFeedback += fragment.NegativeFeedback

		accumulatedRankScore += ranking.Score(ranking.Input{
			ConfidenceScore:  fragment.ConfidenceScore,
			FeedbackCount:    fragment.FeedbackCount,
			PositiveFeedback: fragment.PositiveFeedback,
			NegativeFeedback: fragment.NegativeFeedback,
		})

		history, err := s.storage.FeedbackStorage().ListByFragment(ctx, fragment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load feedback for fragment %s: %w", fragment.ID, err)
		}
		for issue, count := range aggregateIssues(history) {
			issueCounts[issue] += count
		}
	}

	if stats.FeedbackCount > 0 {
		rate := ranking.Round3(float64(stats.PositiveFeedback) / float64(stats.FeedbackCount))
		stats.ApprovalRate = &rate
	}
	stats.CoverageRate = ranking.Round3(float64(stats.FragmentsWithFeedback) / float64(len(fragments)))
	stats.AverageConfidence = ranking.Round2(accumulatedConfidence / float64(len(fragments)))
	if stats.FragmentsWithFeedback > 0 {
		stats.AverageRankScore = ranking.Round3(accumulatedRankScore / float64(stats.FragmentsWithFeedback))
	}

	stats.TopIssues = topIssues(issueCounts, 5)
	stats.PromptRecommendations = promptRecommendations(issueCounts)

	return stats, nil
}

func topIssues(counts map[string]int, limit int) []IssueCount {
	result := make([]IssueCount, 0, len(counts))
	for issue, count := range counts {
		result = append(result, IssueCount{Issue: issue, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Issue < result[j].Issue
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// promptRecommendations maps observed issue tags to classifier prompt
// adjustments. Recommendations are phrased in the reviewers' language.
func promptRecommendations(counts map[string]int) []string {
	if len(counts) == 0 {
		return []string{}
	}

	recommendations := make([]string, 0, 5)

	if counts[string(models.IssueFalsePositive)] > 0 {
		recommendations = append(recommendations,
			"Refina las instrucciones del prompt para exigir ejemplos textuales específicos antes de clasificar una mención.")
	}
	if counts[string(models.IssueWrongCategory)] > 0 {
		recommendations = append(recommendations,
			"Agrega definiciones más precisas de cada tema y ejemplos límite para reducir confusiones en la clasificación.")
	}
	if counts[string(models.IssuePoorContext)] > 0 || counts[string(models.IssueIncompleteText)] > 0 {
		recommendations = append(recommendations,
			"Incluye una instrucción para considerar más contexto previo/posterior en la transcripción antes de etiquetar fragmentos.")
	}
	if counts[string(models.IssueTimingOff)] > 0 {
		recommendations = append(recommendations,
			"Revisa el prompt para que valide que los timestamps estén alineados con la evidencia antes de aceptar el fragmento.")
	}
	if counts[string(models.IssueOther)] > 0 {
		recommendations = append(recommendations,
			"Revisa el feedback textual proporcionado para descubrir matices adicionales y refinar el prompt manualmente.")
	}

	return recommendations
}
