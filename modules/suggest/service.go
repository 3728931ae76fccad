package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"glamo-server/modules/common/fallback"
	"glamo-server/modules/common/gemini"
	"glamo-server/modules/common/utils"
)

// ErrInvalidImage - upload is empty or not a decodable image
var ErrInvalidImage = errors.New("suggest: invalid image")

// ImageModel - multimodal generation
type ImageModel interface {
	Generate(ctx context.Context, prompt string, img *gemini.Image) (string, error)
}

type Service struct {
	model   ImageModel
	maxEdge int
}

func NewService(model ImageModel, maxEdge int) *Service {
	if maxEdge <= 0 {
		maxEdge = 512
	}
	return &Service{model: model, maxEdge: maxEdge}
}

// Suggest - "Style/App/Reason" text; model failure yields the default combo
func (s *Service) Suggest(ctx context.Context, data []byte) (string, error) {
	normalized, err := utils.NormalizeImage(data, s.maxEdge)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	text, err := s.model.Generate(ctx, StyleAndAppPrompt, &gemini.Image{Data: normalized.PNG, MIMEType: normalized.MIMEType})
	if err != nil {
		log.Printf("❌ [Suggest] Generation failed: %v", err)
		return fallback.StyleSuggestion, nil
	}
	return fallback.SafeString(text, fallback.StyleSuggestion), nil
}
