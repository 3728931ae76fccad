package chat

import (
	"context"
	"log"
	"strings"

	"glamo-server/modules/common/fallback"
	"glamo-server/modules/common/utils"
)

// TextModel - text-only generation
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	model TextModel
}

func NewService(model TextModel) *Service {
	return &Service{model: model}
}

// Ask - trimmed answer, or the fixed apology when the model is unavailable
func (s *Service) Ask(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	log.Printf("💬 [Chat] Question: %s", utils.TruncateString(question, 60))

	answer, err := s.model.GenerateText(ctx, ChatPrompt(question))
	if err != nil {
		log.Printf("❌ [Chat] Generation failed: %v", err)
		return fallback.ChatAnswer
	}
	return fallback.SafeString(answer, fallback.ChatAnswer)
}
