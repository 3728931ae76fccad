package music

import (
	"context"
	"strings"
)

// Song - resolved track metadata returned to the client
type Song struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Image   string  `json:"image"`   // album art URL or the static placeholder
	Preview *string `json:"preview"` // null when the provider has no preview
	Source  string  `json:"source"`  // provider that produced the record
}

// TitleKey - de-duplication identity: lowercased title
func (s Song) TitleKey() string {
	return strings.ToLower(strings.TrimSpace(s.Title))
}

// Provider searches one music catalog. A nil song with a nil error means the
// catalog had no match.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Song, error)
}

// SearchResponse - GET /music/search body
type SearchResponse struct {
	Query string `json:"query"`
	Song  *Song  `json:"song"`
}

// ErrorResponse - error body, same shape as the other routes
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func strPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
