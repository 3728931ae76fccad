package music

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"glamo-server/modules/common/fallback"
)

const DefaultJioSaavnAPIURL = "https://saavn.dev/api"

// JioSaavnProvider - unauthenticated fallback catalog
type JioSaavnProvider struct {
	client  *http.Client
	baseURL string
}

// NewJioSaavnProvider creates the JioSaavn search adapter.
func NewJioSaavnProvider(client *http.Client, baseURL string) *JioSaavnProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultJioSaavnAPIURL
	}
	return &JioSaavnProvider{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *JioSaavnProvider) Name() string { return "jiosaavn" }

type saavnLink struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Link    string `json:"link"`
}

func (l saavnLink) href() string {
	return fallback.FirstNonEmpty(l.URL, l.Link)
}

// saavnLinks accepts either a list of quality variants or a bare URL string.
type saavnLinks []saavnLink

func (s *saavnLinks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = saavnLinks{{URL: single}}
		return nil
	}
	var list []saavnLink
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// last - highest quality variant
func (s saavnLinks) last() string {
	for i := len(s) - 1; i >= 0; i-- {
		if h := s[i].href(); h != "" {
			return h
		}
	}
	return ""
}

type saavnSong struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	PrimaryArtists string `json:"primaryArtists"`
	Artists        struct {
		Primary []struct {
			Name string `json:"name"`
		} `json:"primary"`
	} `json:"artists"`
	Image       saavnLinks `json:"image"`
	DownloadURL saavnLinks `json:"downloadUrl"`
}

func (s saavnSong) artist() string {
	if a := strings.TrimSpace(s.PrimaryArtists); a != "" {
		return a
	}
	names := make([]string, 0, len(s.Artists.Primary))
	for _, a := range s.Artists.Primary {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

type saavnSearchResponse struct {
	Data struct {
		Results []saavnSong `json:"results"`
	} `json:"data"`
}

// Search - first song result for query
func (p *JioSaavnProvider) Search(ctx context.Context, query string) (*Song, error) {
	var out saavnSearchResponse
	endpoint := p.baseURL + "/search/songs?query=" + url.QueryEscape(query)
	if err := getJSON(ctx, p.client, p.Name(), endpoint, nil, &out); err != nil {
		return nil, err
	}

	if len(out.Data.Results) == 0 {
		return nil, nil
	}
	s := out.Data.Results[0]

	return &Song{
		Title:   fallback.FirstNonEmpty(s.Name, s.Title, query),
		Artist:  fallback.SafeString(s.artist(), fallback.UnknownArtist),
		Image:   fallback.SafeString(s.Image.last(), fallback.DefaultSongImage),
		Preview: strPtr(s.DownloadURL.last()),
		Source:  p.Name(),
	}, nil
}
