package music

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"glamo-server/modules/common/fallback"
)

const (
	DefaultSpotifyAPIURL   = "https://api.spotify.com/v1"
	DefaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// SpotifyProvider - primary catalog, bearer token from TokenCache
type SpotifyProvider struct {
	client  *http.Client
	baseURL string
	tokens  *TokenCache
}

// NewSpotifyProvider creates the Spotify search adapter.
func NewSpotifyProvider(client *http.Client, baseURL string, tokens *TokenCache) *SpotifyProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultSpotifyAPIURL
	}
	return &SpotifyProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

func (p *SpotifyProvider) Name() string { return "spotify" }

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	PreviewURL *string `json:"preview_url"`
}

// Search - top track match for query
func (p *SpotifyProvider) Search(ctx context.Context, query string) (*Song, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	var out spotifySearchResponse
	err = getJSON(ctx, p.client, p.Name(), p.baseURL+"/search?"+params.Encode(),
		map[string]string{"Authorization": "Bearer " + token}, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
			p.tokens.Invalidate(ctx)
		}
		return nil, err
	}

	if len(out.Tracks.Items) == 0 {
		return nil, nil
	}
	track := out.Tracks.Items[0]

	names := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	artist := fallback.SafeString(strings.Join(names, ", "), fallback.UnknownArtist)

	image := fallback.DefaultSongImage
	if len(track.Album.Images) > 0 {
		image = fallback.SafeString(track.Album.Images[0].URL, fallback.DefaultSongImage)
	}

	var preview *string
	if track.PreviewURL != nil {
		preview = strPtr(*track.PreviewURL)
	}

	return &Song{
		Title:   fallback.SafeString(track.Name, query),
		Artist:  artist,
		Image:   image,
		Preview: preview,
		Source:  p.Name(),
	}, nil
}
