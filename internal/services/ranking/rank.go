// Package ranking computes fragment display rank from classification
// confidence and accumulated human feedback.
package ranking

import "math"

// Input carries the counters the rank formula reads.
type Input struct {
	ConfidenceScore  int
	FeedbackCount    int
	PositiveFeedback int
	NegativeFeedback int
}

// Score blends classifier confidence with feedback signal. With zero feedback
// the score is exactly 0.6 times confidence. Feedback adds a positive-ratio
// component, a logarithmic engagement bonus, and a negative-ratio penalty.
// The result is rounded to 3 decimals. This is the single canonical formula;
// every rank shown anywhere comes from here.
func Score(in Input) float64 {
	confidence := float64(in.ConfidenceScore)

	total := in.FeedbackCount
	if total < 0 {
		total = 0
	}
	positive := in.PositiveFeedback
	if positive < 0 {
		positive = 0
	}
	negative := in.NegativeFeedback
	if negative < 0 {
		negative = 0
	}

	var positiveRatio, negativeRatio, engagementBonus float64
	if total > 0 {
		positiveRatio = float64(positive) / float64(total)
		negativeRatio = float64(negative) / float64(total)
		engagementBonus = math.Log2(float64(total)+1) * 6
	}

	score := confidence*0.6 + positiveRatio*40 + engagementBonus - negativeRatio*28

	return Round3(score)
}

// Round3 rounds to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
