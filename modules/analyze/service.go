package analyze

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"glamo-server/modules/common/fallback"
	"glamo-server/modules/common/gemini"
	"glamo-server/modules/common/utils"
	"glamo-server/modules/music"
)

var (
	// ErrInvalidImage - upload is empty or not a decodable image
	ErrInvalidImage = errors.New("analyze: invalid image")
	// ErrSceneAnalysis - the first model call failed, nothing downstream can run
	ErrSceneAnalysis = errors.New("analyze: scene analysis failed")
)

const (
	DefaultMaxSongs     = 10
	DefaultMaxImageEdge = 512
	maxCaptions         = 5
)

// quotes pair left to right; an empty "" pair still consumes both quotes
var songQueryPattern = regexp.MustCompile(`"([^"]*)"`)

type Service struct {
	model    Model
	resolver SongResolver
	maxSongs int
	maxEdge  int
}

// NewService - maxSongs/maxEdge <= 0 use the defaults
func NewService(model Model, resolver SongResolver, maxSongs, maxEdge int) *Service {
	if maxSongs <= 0 {
		maxSongs = DefaultMaxSongs
	}
	if maxEdge <= 0 {
		maxEdge = DefaultMaxImageEdge
	}
	return &Service{model: model, resolver: resolver, maxSongs: maxSongs, maxEdge: maxEdge}
}

// Analyze - scene analysis first, then editing, captions and music concurrently.
// Only an unreadable image or a failed scene analysis surface as errors.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResponse, error) {
	normalized, err := utils.NormalizeImage(in.Image, s.maxEdge)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	img := &gemini.Image{Data: normalized.PNG, MIMEType: normalized.MIMEType}

	log.Printf("🧠 [Analyze] Scene analysis: app=%q style=%q image=%dx%d",
		in.App, in.Style, normalized.Width, normalized.Height)

	analysis, err := s.model.Generate(ctx, ComprehensiveAnalysisPrompt, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSceneAnalysis, err)
	}
	analysis = strings.TrimSpace(analysis)
	if analysis == "" {
		return nil, fmt.Errorf("%w: empty analysis", ErrSceneAnalysis)
	}

	resp := &AnalyzeResponse{
		EditingValues: fallback.EditingSteps,
		Captions:      fallback.Captions(),
		Songs:         []music.Song{},
		MoodInfo:      analysis,
	}

	// stages never return errors; each writes only its own field
	var g errgroup.Group
	g.Go(func() error {
		resp.EditingValues = s.editingSteps(ctx, in.App, in.Style, analysis, img)
		return nil
	})
	g.Go(func() error {
		resp.Captions = s.captions(ctx, in.Style, analysis, img)
		return nil
	})
	g.Go(func() error {
		resp.Songs = s.songs(ctx, in.Style, analysis, img)
		return nil
	})
	_ = g.Wait()

	log.Printf("✅ [Analyze] Done: captions=%d songs=%d", len(resp.Captions), len(resp.Songs))
	return resp, nil
}

func (s *Service) editingSteps(ctx context.Context, appName, style, analysis string, img *gemini.Image) string {
	app, ok := LookupApp(appName)
	if !ok {
		log.Printf("⚠️  [Analyze] Unknown app %q, using default steps", appName)
		return fallback.EditingSteps
	}

	text, err := s.model.Generate(ctx, EditingPrompt(app, style, analysis), img)
	if err != nil {
		log.Printf("❌ [Analyze] Editing generation failed: %v", err)
		return fallback.EditingSteps
	}
	return fallback.SafeString(text, fallback.EditingSteps)
}

func (s *Service) captions(ctx context.Context, style, analysis string, img *gemini.Image) []string {
	raw, err := s.model.Generate(ctx, CaptionPrompt(style, analysis), img)
	if err != nil {
		log.Printf("❌ [Analyze] Caption generation failed: %v", err)
		return fallback.Captions()
	}

	verdict, err := s.model.GenerateText(ctx, CaptionValidatorPrompt(style, analysis, raw))
	if err != nil {
		log.Printf("❌ [Analyze] Caption validation failed: %v", err)
		return fallback.Captions()
	}

	// substring match: "invalid" passes as well
	if !strings.Contains(strings.ToLower(verdict), "valid") {
		log.Printf("⚠️  [Analyze] Captions rejected: %s", utils.TruncateString(verdict, 40))
		return fallback.Captions()
	}

	lines := nonBlankLines(raw, maxCaptions)
	if len(lines) == 0 {
		return fallback.Captions()
	}
	return lines
}

func (s *Service) songs(ctx context.Context, style, analysis string, img *gemini.Image) []music.Song {
	songs := []music.Song{}
	if s.resolver == nil {
		return songs
	}

	raw, err := s.model.Generate(ctx, MusicPrompt(style, analysis), img)
	if err != nil {
		log.Printf("❌ [Analyze] Music suggestion failed: %v", err)
		return songs
	}

	queries := ExtractSongQueries(raw)
	if len(queries) == 0 {
		log.Println("🔇 [Analyze] No quoted song titles in music suggestion")
		return songs
	}

	for _, q := range queries {
		if len(songs) >= s.maxSongs || ctx.Err() != nil {
			break
		}
		if song := s.resolver.Resolve(ctx, q); song != nil {
			songs = music.Dedupe(append(songs, *song), s.maxSongs)
		}
	}
	return songs
}

// ExtractSongQueries - non-blank double-quoted substrings in order of appearance
func ExtractSongQueries(raw string) []string {
	matches := songQueryPattern.FindAllStringSubmatch(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if q := strings.TrimSpace(m[1]); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func nonBlankLines(s string, limit int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
