package fallback

import "strings"

// Deterministic substitutes used when a generation stage fails. The response
// shape never changes; only these values stand in for model output.
const (
	EditingSteps = "Step 1: Auto Enhance – Apply\nReason: Default enhancement."

	ChatAnswer = "Oops! Something went wrong on our end. Please try again in a moment."

	StyleSuggestion = "Style: Bright & Airy\nApp: iPhone Photos App\nReason: Default fallback."

	// DefaultSongImage is served by the static file handler.
	DefaultSongImage = "/static/music-default.jpg"

	UnknownArtist = "Unknown"
)

var captions = []string{
	"#Glamo #GlowGoals #Inspo",
	"#VibeCheck #Glamo #Magic",
}

// Captions returns a fresh copy of the fixed two-caption fallback.
func Captions() []string {
	out := make([]string, len(captions))
	copy(out, captions)
	return out
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value, fallback string) string {
	if s := strings.TrimSpace(value); s != "" {
		return s
	}
	return fallback
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
