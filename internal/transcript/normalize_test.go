package transcript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItems(t *testing.T, raw string) []interface{} {
	t.Helper()
	var items []interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestNormalizeSegmentsArray(t *testing.T) {
	items := mustItems(t, `[{
		"segments": [
			{"start": 0, "end": 4.5, "text": "hola a todos"},
			{"start": 4.5, "end": 9, "text": "bienvenidos al programa"}
		]
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 2)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 4.5, segments[0].End)
	assert.Equal(t, "hola a todos", segments[0].Text)
	assert.Equal(t, "bienvenidos al programa", segments[1].Text)
}

func TestNormalizeTranscriptArray(t *testing.T) {
	items := mustItems(t, `[{
		"transcript": [
			{"startTime": "0:05", "endTime": "0:09", "text": "primer segmento"},
			{"startTime": "1:02:03", "endTime": "1:02:08", "text": "segundo segmento"}
		]
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 2)
	assert.Equal(t, 5.0, segments[0].Start)
	assert.Equal(t, 9.0, segments[0].End)
	assert.Equal(t, 3723.0, segments[1].Start)
}

func TestNormalizeNestedTranscript(t *testing.T) {
	items := mustItems(t, `[{
		"transcript": {
			"segments": [{"start": 10, "end": 12, "text": "anidado"}]
		}
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 1)
	assert.Equal(t, "anidado", segments[0].Text)
}

func TestNormalizeStringTranscript(t *testing.T) {
	items := mustItems(t, `[{"transcript": "  texto completo sin tiempos  "}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 1)
	assert.Equal(t, "texto completo sin tiempos", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 0.0, segments[0].End)
}

func TestNormalizeMillisecondFields(t *testing.T) {
	items := mustItems(t, `[{
		"data": [
			{"startTimeMs": 1500, "endTimeMs": 4000, "text": "en milisegundos"},
			{"startMs": "6,000", "durationMs": 2000, "text": "con duracion"}
		]
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 2)
	assert.Equal(t, 1.5, segments[0].Start)
	assert.Equal(t, 4.0, segments[0].End)
	assert.Equal(t, 6.0, segments[1].Start)
	assert.Equal(t, 8.0, segments[1].End)
}

func TestNormalizeDurationFallback(t *testing.T) {
	items := mustItems(t, `[{
		"captions": [{"start": 30, "dur": 5, "text": "fin por duracion"}]
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 1)
	assert.Equal(t, 30.0, segments[0].Start)
	assert.Equal(t, 35.0, segments[0].End)
}

func TestNormalizeBareSegmentRecords(t *testing.T) {
	items := mustItems(t, `[
		{"start": 20, "end": 25, "text": "segundo"},
		{"start": 0, "end": 5, "text": "primero"}
	]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 2)
	assert.Equal(t, "primero", segments[0].Text, "segments sort by start time")
	assert.Equal(t, "segundo", segments[1].Text)
}

func TestNormalizeTextAliasesAndWhitespace(t *testing.T) {
	items := mustItems(t, `[{
		"results": [
			{"start": 0, "end": 2, "caption": "  por   caption  "},
			{"start": 2, "end": 4, "transcriptText": "por transcriptText"},
			{"start": 4, "end": 6, "text": "   "}
		]
	}]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 2, "blank text segments are dropped")
	assert.Equal(t, "por caption", segments[0].Text)
	assert.Equal(t, "por transcriptText", segments[1].Text)
}

func TestNormalizeSkipsUnrecognizedItems(t *testing.T) {
	items := mustItems(t, `[
		{"somethingElse": true},
		42,
		{"entries": [{"start": 1, "end": 2, "text": "valido"}]}
	]`)

	segments := NormalizeItems(items)
	require.Len(t, segments, 1)
	assert.Equal(t, "valido", segments[0].Text)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeItems(nil))
	assert.Empty(t, NormalizeItems([]interface{}{}))
}
