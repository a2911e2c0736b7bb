package dialogue

import (
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|/shorts/|/embed/)([A-Za-z0-9_-]{11})`)

// PlaceholderPrefix marks seed entries whose video id was never filled in.
const PlaceholderPrefix = "placeholder"

// VideoIDFromURL extracts the 11-character YouTube id from url.
func VideoIDFromURL(url string) (string, bool) {
	match := videoIDPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// IsPlaceholderID reports whether id is empty or a seed placeholder.
func IsPlaceholderID(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || strings.HasPrefix(strings.ToLower(id), PlaceholderPrefix)
}

// WatchURL returns the canonical watch URL for a YouTube id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
