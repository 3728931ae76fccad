package analyze

import (
	"context"

	"glamo-server/modules/common/gemini"
	"glamo-server/modules/music"
)

// Model - the two call shapes the pipeline needs from the model access layer
type Model interface {
	Generate(ctx context.Context, prompt string, img *gemini.Image) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// SongResolver - free-text query to at most one song
type SongResolver interface {
	Resolve(ctx context.Context, query string) *music.Song
}

// AnalyzeInput - one uploaded photo plus user preferences
type AnalyzeInput struct {
	Image []byte
	App   string
	Style string
}

// AnalyzeResponse - POST /analyze body; every field is always present
type AnalyzeResponse struct {
	EditingValues string       `json:"editing_values"`
	Captions      []string     `json:"captions"`
	Songs         []music.Song `json:"songs"`
	MoodInfo      string       `json:"mood_info"` // scene analysis, verbatim
}

// ErrorResponse - {"detail": "..."} error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}
