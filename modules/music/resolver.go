package music

import (
	"context"
	"errors"
	"log"
	"strings"
)

// Resolver tries providers in order and returns the first match.
type Resolver struct {
	providers []Provider
}

// NewResolver - nil providers are skipped
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{}
	for _, p := range providers {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// Resolve returns nil when no provider matches. Provider failures are logged
// and never surface to the caller.
func (r *Resolver) Resolve(ctx context.Context, query string) *Song {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}

	for _, p := range r.providers {
		if ctx.Err() != nil {
			return nil
		}
		song, err := p.Search(ctx, q)
		if err != nil {
			if !errors.Is(err, ErrNoCredentials) {
				log.Printf("⚠️  [Music] %s search failed for %q: %v", p.Name(), q, err)
			}
			continue
		}
		if song != nil {
			return song
		}
	}

	log.Printf("🔇 [Music] No match for %q", q)
	return nil
}

// Dedupe keeps the first song per lowercased title, up to limit entries.
// limit <= 0 means no cap.
func Dedupe(songs []Song, limit int) []Song {
	seen := make(map[string]struct{}, len(songs))
	out := make([]Song, 0, len(songs))
	for _, s := range songs {
		key := s.TitleKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
