package youtube

import (
	"regexp"
	"strings"
)

// ParsedURL is the result of parsing a YouTube URL.
type ParsedURL struct {
	Type        string // "channel", "playlist", or "video"
	ID          string
	OriginalURL string
	DisplayName string
}

var (
	channelIDPattern     = regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)`)
	channelCustomPattern = regexp.MustCompile(`youtube\.com/c/([a-zA-Z0-9_-]+)`)
	channelHandlePattern = regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9_.-]+)`)
	playlistPattern      = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	videoPattern         = regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`)
)

// ParseURL extracts the reference type and ID from a YouTube URL. Playlist
// parameters win over video parameters so that a watch URL inside a playlist
// registers the playlist. Returns nil for URLs that are not recognizable
// YouTube references.
func ParseURL(rawURL string) *ParsedURL {
	cleanURL := strings.TrimSpace(rawURL)
	if cleanURL == "" {
		return nil
	}
	if !strings.Contains(cleanURL, "youtube.com") && !strings.Contains(cleanURL, "youtu.be") {
		return nil
	}

	if m := playlistPattern.FindStringSubmatch(cleanURL); m != nil {
		return &ParsedURL{Type: "playlist", ID: m[1], OriginalURL: cleanURL}
	}

	if m := videoPattern.FindStringSubmatch(cleanURL); m != nil {
		return &ParsedURL{Type: "video", ID: m[1], OriginalURL: cleanURL}
	}

	if m := channelIDPattern.FindStringSubmatch(cleanURL); m != nil {
		return &ParsedURL{Type: "channel", ID: m[1], OriginalURL: cleanURL}
	}
	if m := channelCustomPattern.FindStringSubmatch(cleanURL); m != nil {
		return &ParsedURL{Type: "channel", ID: m[1], OriginalURL: cleanURL, DisplayName: m[1]}
	}
	if m := channelHandlePattern.FindStringSubmatch(cleanURL); m != nil {
		return &ParsedURL{Type: "channel", ID: m[1], OriginalURL: cleanURL, DisplayName: "@" + m[1]}
	}

	return nil
}

// NormalizeURL rewrites a recognized YouTube URL into its canonical form.
// Returns "" when the URL cannot be parsed.
func NormalizeURL(rawURL string) string {
	parsed := ParseURL(rawURL)
	if parsed == nil {
		return ""
	}

	switch parsed.Type {
	case "channel":
		if strings.HasPrefix(parsed.ID, "UC") && len(parsed.ID) == 24 {
			return "https://www.youtube.com/channel/" + parsed.ID
		}
		if strings.HasPrefix(parsed.DisplayName, "@") {
			return "https://www.youtube.com/" + parsed.DisplayName
		}
		return "https://www.youtube.com/c/" + parsed.ID
	case "playlist":
		return "https://www.youtube.com/playlist?list=" + parsed.ID
	case "video":
		return "https://www.youtube.com/watch?v=" + parsed.ID
	default:
		return ""
	}
}
