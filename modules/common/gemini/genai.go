package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// GenaiGenerator - Generator backed by the Gemini API.
// One genai.Client is kept per key; clients are cheap but hold their own transport.
type GenaiGenerator struct {
	model       string
	temperature float32

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGenaiGenerator - generator for model (e.g. "gemini-2.5-flash")
func NewGenaiGenerator(model string) *GenaiGenerator {
	return &GenaiGenerator{
		model:       model,
		temperature: 0.7,
		clients:     make(map[string]*genai.Client),
	}
}

// GenerateContent sends parts as a single user turn and returns the response text.
func (g *GenaiGenerator) GenerateContent(ctx context.Context, apiKey string, parts []*genai.Part) (string, error) {
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(g.temperature),
		},
	)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GenaiGenerator) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	client, ok := g.clients[apiKey]
	g.mu.Unlock()
	if ok {
		return client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	g.mu.Lock()
	g.clients[apiKey] = client
	g.mu.Unlock()
	return client, nil
}
