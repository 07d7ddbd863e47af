// Package classify decides whether a catalog entry is feed noise.
//
// This package enables alttube to:
// - Detect AI-generated or synthetic-voice content by keyword
// - Detect music uploads by category tag and title/channel markers
//
// Matching is substring-based on purpose: a keyword embedded inside a
// longer word still counts. Both checks are pure and total; absent
// fields are passed as empty strings.
package classify

import (
	"regexp"
	"strings"
)

// musicCategoryID is the catalog's reserved category tag for music.
const musicCategoryID = "10"

// aiKeywords are matched case-insensitively against title, description
// and channel name. The list mixes tool names with generic AI terms,
// in English and Russian.
var aiKeywords = []string{
	"ai", "ии", "нейросет", "искусствен", "midjourney", "chatgpt", "gpt", "deepfake",
	"voice clone", "ai cover", "cover ai", "suno", "sora", "dalle", "нейро", "клон голоса",
}

// musicMarkers covers lyric videos, official audio uploads, remixes and
// the " - Topic" suffix of auto-generated music channels.
var musicMarkers = regexp.MustCompile(`(?i)lyrics?|lyric video|visuali[sz]er|official audio|audio|instrumental|remix| - topic`)

// IsSyntheticContent reports whether any of the text fields contains an
// AI-content keyword.
func IsSyntheticContent(title, description, channel string) bool {
	return containsAIKeyword(title) || containsAIKeyword(description) || containsAIKeyword(channel)
}

// IsMusicContent reports whether the entry carries the music category
// tag or its title/channel text matches a music marker.
func IsMusicContent(categoryID, title, channel string) bool {
	if categoryID == musicCategoryID {
		return true
	}
	return musicMarkers.MatchString(title + " " + channel)
}

func containsAIKeyword(s string) bool {
	if s == "" {
		return false
	}
	t := strings.ToLower(s)
	for _, w := range aiKeywords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}
