// Package detect implements keyword matching over transcript segments. It
// produces candidate fragments with surrounding context for classification.
package detect

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ternarybob/ausculto/internal/models"
)

const (
	// DefaultWindowSeconds is the context window on each side of a hit segment.
	DefaultWindowSeconds = 45

	// DefaultMaxMatches caps the matches emitted per transcript.
	DefaultMaxMatches = 30
)

// Match is one keyword hit with its surrounding context window.
type Match struct {
	StartTime       float64
	EndTime         float64
	MatchedText     string
	ContextText     string
	MatchedKeywords []string
}

// Options tunes the matcher. Zero values fall back to the defaults.
type Options struct {
	WindowSeconds int
	MaxMatches    int
}

// foldTransformer strips diacritics after NFD decomposition, so "depresión"
// and "depresion" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a string and removes diacritics for comparison.
func Normalize(value string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(value))
	if err != nil {
		return strings.ToLower(value)
	}
	return folded
}

// collectKeywords returns the keywords whose normalized form occurs in the
// normalized text, deduplicated and sorted. The original keyword spelling is
// preserved in the result.
func collectKeywords(text string, keywords []string) []string {
	if text == "" {
		return nil
	}

	normalizedText := Normalize(text)
	found := make(map[string]struct{})

	for _, keyword := range keywords {
		normalizedKeyword := Normalize(keyword)
		if normalizedKeyword != "" && strings.Contains(normalizedText, normalizedKeyword) {
			found[keyword] = struct{}{}
		}
	}

	if len(found) == 0 {
		return nil
	}

	result := make([]string, 0, len(found))
	for keyword := range found {
		result = append(result, keyword)
	}
	sort.Strings(result)
	return result
}

// DetectMatches scans segments in order and emits a match for every segment
// containing at least one keyword, with context expanded to neighbors inside
// the time window. Emission stops at the match cap, keeping the earliest
// matches. Empty segments or keywords yield an empty result.
func DetectMatches(segments []models.TranscriptSegment, keywords []string, opts Options) []Match {
	if len(segments) == 0 || len(keywords) == 0 {
		return []Match{}
	}

	windowSeconds := float64(opts.WindowSeconds)
	if opts.WindowSeconds == 0 {
		windowSeconds = DefaultWindowSeconds
	}
	maxMatches := opts.MaxMatches
	if maxMatches == 0 {
		maxMatches = DefaultMaxMatches
	}

	matches := make([]Match, 0)

	for i, segment := range segments {
		matchedKeywords := collectKeywords(segment.Text, keywords)
		if len(matchedKeywords) == 0 {
			continue
		}

		windowStart := segment.Start - windowSeconds
		windowEnd := segment.End + windowSeconds

		// Walk backward then forward from the hit segment, stopping once a
		// neighbor falls outside the window.
		firstIdx := i
		for j := i - 1; j >= 0; j-- {
			if segments[j].End < windowStart {
				break
			}
			firstIdx = j
		}
		lastIdx := i
		for j := i + 1; j < len(segments); j++ {
			if segments[j].Start > windowEnd {
				break
			}
			lastIdx = j
		}

		contextParts := make([]string, 0, lastIdx-firstIdx+1)
		for _, candidate := range segments[firstIdx : lastIdx+1] {
			contextParts = append(contextParts, strings.TrimSpace(candidate.Text))
		}
		contextText := strings.TrimSpace(strings.Join(contextParts, " "))
		matchedText := strings.TrimSpace(segment.Text)
		if contextText == "" {
			contextText = matchedText
		}

		startTime := segment.Start - windowSeconds
		if startTime < 0 {
			startTime = 0
		}

		matches = append(matches, Match{
			StartTime:       startTime,
			EndTime:         segment.End + windowSeconds,
			MatchedText:     matchedText,
			ContextText:     contextText,
			MatchedKeywords: matchedKeywords,
		})

		if len(matches) >= maxMatches {
			break
		}
	}

	return matches
}
