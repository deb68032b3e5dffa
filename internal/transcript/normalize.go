package transcript

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ternarybob/ausculto/internal/models"
)

// Extraction actors return wildly different dataset shapes. Normalization
// walks an ordered list of shape matchers per item; the first matching shape
// wins and later matchers are not consulted for that item.

// shapeMatcher extracts segments from one dataset item. ok reports whether
// the shape applied, even if it produced no segments.
type shapeMatcher func(record map[string]interface{}) (segments []models.TranscriptSegment, ok bool)

// arrayShape matches a record whose named field is an array of raw segments.
func arrayShape(field string) shapeMatcher {
	return func(record map[string]interface{}) ([]models.TranscriptSegment, bool) {
		arr, ok := record[field].([]interface{})
		if !ok {
			return nil, false
		}
		return segmentsFromArray(arr), true
	}
}

// nestedTranscriptShape matches {"transcript": {"segments": [...]}}.
func nestedTranscriptShape(record map[string]interface{}) ([]models.TranscriptSegment, bool) {
	nested, ok := record["transcript"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	arr, ok := nested["segments"].([]interface{})
	if !ok {
		return nil, false
	}
	return segmentsFromArray(arr), true
}

// stringTranscriptShape matches {"transcript": "full text"} and yields a
// single zero-timed segment.
func stringTranscriptShape(record map[string]interface{}) ([]models.TranscriptSegment, bool) {
	text, ok := record["transcript"].(string)
	if !ok {
		return nil, false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, true
	}
	return []models.TranscriptSegment{{Start: 0, End: 0, Text: trimmed}}, true
}

// bareSegmentShape matches a record that is itself a timed segment.
func bareSegmentShape(record map[string]interface{}) ([]models.TranscriptSegment, bool) {
	_, hasText := record["text"]
	if !hasText {
		return nil, false
	}
	_, hasStart := record["start"]
	_, hasStartTime := record["startTime"]
	_, hasStartTimeMs := record["startTimeMs"]
	if !hasStart && !hasStartTime && !hasStartTimeMs {
		return nil, false
	}
	if seg, ok := segmentFromRecord(record); ok {
		return []models.TranscriptSegment{seg}, true
	}
	return nil, true
}

// bareTextShape matches a record carrying only untimed text.
func bareTextShape(record map[string]interface{}) ([]models.TranscriptSegment, bool) {
	text, ok := record["text"].(string)
	if !ok {
		return nil, false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, true
	}
	return []models.TranscriptSegment{{Start: 0, End: 0, Text: trimmed}}, true
}

var shapeMatchers = []shapeMatcher{
	arrayShape("segments"),
	arrayShape("transcript"),
	nestedTranscriptShape,
	stringTranscriptShape,
	arrayShape("transcriptSegments"),
	arrayShape("data"),
	arrayShape("results"),
	arrayShape("captions"),
	arrayShape("items"),
	arrayShape("entries"),
	bareSegmentShape,
	bareTextShape,
}

// NormalizeItems converts raw dataset items into ordered transcript segments.
// Items whose shape is not recognized are skipped. The result is sorted by
// start time.
func NormalizeItems(items []interface{}) []models.TranscriptSegment {
	segments := make([]models.TranscriptSegment, 0)

	for _, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for _, match := range shapeMatchers {
			if extracted, matched := match(record); matched {
				segments = append(segments, extracted...)
				break
			}
		}
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	return segments
}

func segmentsFromArray(arr []interface{}) []models.TranscriptSegment {
	segments := make([]models.TranscriptSegment, 0, len(arr))
	for _, raw := range arr {
		record, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if seg, ok := segmentFromRecord(record); ok {
			segments = append(segments, seg)
		}
	}
	return segments
}

// segmentFromRecord maps one raw segment record onto start/end/text. Field
// aliases are tried in fixed order: millisecond fields first, then explicit
// seconds, then loosely-typed start/end values. A missing end falls back to
// start plus duration.
func segmentFromRecord(record map[string]interface{}) (models.TranscriptSegment, bool) {
	start, ok := msToSeconds(firstPresent(record, "startTimeMs", "startMs", "offsetStartMs", "startMilliseconds", "start_time"))
	if !ok {
		start, ok = parseNumber(firstPresent(record, "startSeconds", "startSecond", "time"))
	}
	if !ok {
		start = parseSeconds(firstPresent(record, "start", "startTime"), 0)
	}

	end, ok := msToSeconds(firstPresent(record, "endTimeMs", "endMs", "offsetEndMs", "endMilliseconds", "end_time"))
	if !ok {
		end, ok = parseNumber(firstPresent(record, "endSeconds", "endSecond", "endTimeSeconds"))
	}
	if !ok {
		end = parseSeconds(firstPresent(record, "end", "endTime"), start)
	}

	if end <= start {
		duration, ok := msToSeconds(firstPresent(record, "durationMs", "durationMilliseconds", "durMs", "offsetDurationMs"))
		if !ok {
			duration, ok = parseNumber(firstPresent(record, "durationSeconds", "dur", "duration"))
		}
		if !ok {
			duration = parseSeconds(record["duration"], 0)
		}
		if duration > 0 {
			end = start + duration
		}
	}

	text := collapseWhitespace(firstString(record, "text", "transcriptText", "caption", "text_original", "text_clean"))
	if text == "" {
		return models.TranscriptSegment{}, false
	}

	return models.TranscriptSegment{Start: start, End: end, Text: text}, true
}

func firstPresent(record map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// parseNumber handles JSON numbers and numeric strings (with thousands
// separators stripped).
func parseNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func msToSeconds(value interface{}) (float64, bool) {
	n, ok := parseNumber(value)
	if !ok {
		return 0, false
	}
	return n / 1000, true
}

// parseSeconds additionally understands clock-style strings ("1:02:03.5" or
// "02:03").
func parseSeconds(value interface{}, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return fallback
		}

		parts := strings.Split(trimmed, ":")
		if len(parts) >= 2 {
			var hours, minutes, seconds float64
			var err error
			seconds, err = strconv.ParseFloat(parts[len(parts)-1], 64)
			if err == nil {
				minutes, err = strconv.ParseFloat(parts[len(parts)-2], 64)
			}
			if err == nil && len(parts) >= 3 {
				hours, err = strconv.ParseFloat(parts[len(parts)-3], 64)
			}
			if err == nil {
				return hours*3600 + minutes*60 + seconds
			}
		}

		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
		return fallback
	default:
		return fallback
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
