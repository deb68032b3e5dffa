package detect

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/models"
)

func seg(start, end float64, text string) models.TranscriptSegment {
	return models.TranscriptSegment{Start: start, End: end, Text: text}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "depresion", Normalize("Depresión"))
	assert.Equal(t, "psicologo", Normalize("PSICÓLOGO"))
	assert.Equal(t, "terapeuta", Normalize("terapéuta"))
	assert.Equal(t, "sin acentos", Normalize("sin acentos"))
}

func TestDetectMatchesBasic(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(0, 10, "hola a todos"),
		seg(10, 20, "hoy hablamos de terapia"),
		seg(20, 30, "y otras cosas"),
	}

	matches := DetectMatches(segments, []string{"terapia"}, Options{})
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, 0.0, m.StartTime, "window start clamps at zero")
	assert.Equal(t, 65.0, m.EndTime)
	assert.Equal(t, "hoy hablamos de terapia", m.MatchedText)
	assert.Equal(t, []string{"terapia"}, m.MatchedKeywords)
	assert.Contains(t, m.ContextText, "hola a todos")
	assert.Contains(t, m.ContextText, "y otras cosas")
}

func TestDetectMatchesCaseAndDiacriticInsensitive(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(0, 5, "Mi Terapéuta me dijo algo importante"),
	}

	matches := DetectMatches(segments, []string{"terapeuta"}, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"terapeuta"}, matches[0].MatchedKeywords)
}

func TestDetectMatchesContextWindowBounds(t *testing.T) {
	// Segments 100s apart so neighbors fall outside the 45s window.
	segments := []models.TranscriptSegment{
		seg(0, 5, "muy lejos antes"),
		seg(200, 205, "aqui se habla de ansiedad"),
		seg(400, 405, "muy lejos despues"),
	}

	matches := DetectMatches(segments, []string{"ansiedad"}, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "aqui se habla de ansiedad", matches[0].ContextText)
	assert.Equal(t, 155.0, matches[0].StartTime)
	assert.Equal(t, 250.0, matches[0].EndTime)
}

func TestDetectMatchesKeywordsSortedDeduped(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(0, 5, "la terapia con mi terapeuta de terapia"),
	}

	matches := DetectMatches(segments, []string{"terapia", "terapeuta", "terapia"}, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"terapeuta", "terapia"}, matches[0].MatchedKeywords)
}

func TestDetectMatchesCap(t *testing.T) {
	segments := make([]models.TranscriptSegment, 31)
	for i := range segments {
		start := float64(i) * 200
		segments[i] = seg(start, start+5, fmt.Sprintf("mencion %d de terapia", i))
	}

	matches := DetectMatches(segments, []string{"terapia"}, Options{})
	require.Len(t, matches, DefaultMaxMatches)
	// First-N in segment order.
	assert.True(t, strings.Contains(matches[0].MatchedText, "mencion 0"))
	assert.True(t, strings.Contains(matches[29].MatchedText, "mencion 29"))
}

func TestDetectMatchesEmptyInputs(t *testing.T) {
	assert.Empty(t, DetectMatches(nil, []string{"terapia"}, Options{}))
	assert.Empty(t, DetectMatches([]models.TranscriptSegment{seg(0, 5, "texto")}, nil, Options{}))
}

func TestDetectMatchesEmptyContextFallsBackToMatchedText(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(0, 5, "  terapia  "),
	}

	matches := DetectMatches(segments, []string{"terapia"}, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "terapia", matches[0].ContextText)
}
