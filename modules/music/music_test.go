package music

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"glamo-server/modules/common/fallback"
)

type stubProvider struct {
	name  string
	song  *Song
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(context.Context, string) (*Song, error) {
	s.calls++
	return s.song, s.err
}

func TestResolverOrder(t *testing.T) {
	songA := &Song{Title: "A", Source: "a"}
	songB := &Song{Title: "B", Source: "b"}

	tests := []struct {
		name       string
		a, b       *stubProvider
		wantSource string
		wantBCalls int
	}{
		{
			name:       "first provider wins",
			a:          &stubProvider{name: "a", song: songA},
			b:          &stubProvider{name: "b", song: songB},
			wantSource: "a",
			wantBCalls: 0,
		},
		{
			name:       "error falls through",
			a:          &stubProvider{name: "a", err: errors.New("boom")},
			b:          &stubProvider{name: "b", song: songB},
			wantSource: "b",
			wantBCalls: 1,
		},
		{
			name:       "missing credentials fall through",
			a:          &stubProvider{name: "a", err: ErrNoCredentials},
			b:          &stubProvider{name: "b", song: songB},
			wantSource: "b",
			wantBCalls: 1,
		},
		{
			name:       "empty result falls through",
			a:          &stubProvider{name: "a"},
			b:          &stubProvider{name: "b", song: songB},
			wantSource: "b",
			wantBCalls: 1,
		},
		{
			name:       "nothing found",
			a:          &stubProvider{name: "a"},
			b:          &stubProvider{name: "b", err: errors.New("down")},
			wantSource: "",
			wantBCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(tt.a, tt.b).Resolve(context.Background(), "query")
			if tt.wantSource == "" {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
			} else if got == nil || got.Source != tt.wantSource {
				t.Fatalf("expected source %q, got %+v", tt.wantSource, got)
			}
			if tt.b.calls != tt.wantBCalls {
				t.Fatalf("provider b called %d times, want %d", tt.b.calls, tt.wantBCalls)
			}
		})
	}
}

func TestResolverBlankQuery(t *testing.T) {
	a := &stubProvider{name: "a", song: &Song{Title: "x"}}
	if got := NewResolver(a).Resolve(context.Background(), "   "); got != nil {
		t.Fatalf("expected nil for blank query, got %+v", got)
	}
	if a.calls != 0 {
		t.Fatal("provider should not be called for a blank query")
	}
}

func TestDedupe(t *testing.T) {
	songs := []Song{
		{Title: "Golden Hour", Artist: "JVKE"},
		{Title: "golden hour ", Artist: "Someone Else"},
		{Title: "Sunflower", Artist: "Post Malone"},
		{Title: "", Artist: "Nobody"},
	}
	got := Dedupe(songs, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 songs, got %d: %+v", len(got), got)
	}
	if got[0].Artist != "JVKE" {
		t.Fatalf("first occurrence should win, got %+v", got[0])
	}

	many := make([]Song, 0, 15)
	for i := 0; i < 15; i++ {
		many = append(many, Song{Title: strings.Repeat("x", i+1)})
	}
	if got := Dedupe(many, 10); len(got) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(got))
	}
	if got := Dedupe(many, 0); len(got) != 15 {
		t.Fatalf("limit 0 should not cap, got %d", len(got))
	}
}

func TestTokenCacheReusesToken(t *testing.T) {
	var exchanges int
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newTokenCache(NewMemoryTokenStore(), func(context.Context) (*oauth2.Token, error) {
		exchanges++
		return &oauth2.Token{AccessToken: "tok", Expiry: now.Add(time.Hour)}, nil
	}, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		tok, err := cache.Token(context.Background())
		if err != nil || tok != "tok" {
			t.Fatalf("Token() = %q, %v", tok, err)
		}
	}
	if exchanges != 1 {
		t.Fatalf("expected 1 exchange, got %d", exchanges)
	}

	// inside the expiry skew the token is refreshed
	now = now.Add(time.Hour - 10*time.Second)
	if _, err := cache.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if exchanges != 2 {
		t.Fatalf("expected refresh near expiry, got %d exchanges", exchanges)
	}
}

func TestTokenCacheDefaultLifetime(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTokenStore()
	cache := newTokenCache(store, func(context.Context) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "tok"}, nil
	}, func() time.Time { return now })

	if _, err := cache.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	cached, ok, _ := store.Load(context.Background())
	if !ok {
		t.Fatal("token was not stored")
	}
	if want := now.Add(time.Hour - 30*time.Second); !cached.Expiry.Equal(want) {
		t.Fatalf("expiry = %v, want %v", cached.Expiry, want)
	}
}

func TestTokenCacheWithoutCredentials(t *testing.T) {
	cache := NewTokenCache("", "", DefaultSpotifyTokenURL, nil, nil)
	if _, err := cache.Token(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func newSpotifyServer(t *testing.T, tokenCalls *int32, searchBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("type") != "track" || r.URL.Query().Get("limit") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSpotifySearch(t *testing.T) {
	var tokenCalls int32
	server := newSpotifyServer(t, &tokenCalls, `{"tracks":{"items":[{
		"name":"Golden Hour",
		"artists":[{"name":"JVKE"},{"name":"Ruth B."}],
		"album":{"images":[{"url":"https://img/large.jpg"},{"url":"https://img/small.jpg"}]},
		"preview_url":"https://p/1.mp3"}]}}`)

	tokens := NewTokenCache("id", "secret", server.URL+"/api/token", server.Client(), nil)
	p := NewSpotifyProvider(server.Client(), server.URL+"/v1", tokens)

	for i := 0; i < 2; i++ {
		song, err := p.Search(context.Background(), "golden hour")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if song.Title != "Golden Hour" || song.Artist != "JVKE, Ruth B." {
			t.Fatalf("unexpected song %+v", song)
		}
		if song.Image != "https://img/large.jpg" {
			t.Fatalf("expected first album image, got %q", song.Image)
		}
		if song.Preview == nil || *song.Preview != "https://p/1.mp3" {
			t.Fatalf("unexpected preview %v", song.Preview)
		}
		if song.Source != "spotify" {
			t.Fatalf("unexpected source %q", song.Source)
		}
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 1 {
		t.Fatalf("expected one token exchange, got %d", got)
	}
}

func TestSpotifySearchDefaults(t *testing.T) {
	var tokenCalls int32
	server := newSpotifyServer(t, &tokenCalls, `{"tracks":{"items":[{
		"name":"Quiet","artists":[],"album":{"images":[]},"preview_url":null}]}}`)

	tokens := NewTokenCache("id", "secret", server.URL+"/api/token", server.Client(), nil)
	song, err := NewSpotifyProvider(server.Client(), server.URL+"/v1", tokens).Search(context.Background(), "quiet")
	if err != nil {
		t.Fatal(err)
	}
	if song.Image != fallback.DefaultSongImage {
		t.Fatalf("expected placeholder image, got %q", song.Image)
	}
	if song.Artist != fallback.UnknownArtist {
		t.Fatalf("expected unknown artist, got %q", song.Artist)
	}
	if song.Preview != nil {
		t.Fatalf("expected nil preview, got %q", *song.Preview)
	}
}

func TestSpotifySearchNoResults(t *testing.T) {
	var tokenCalls int32
	server := newSpotifyServer(t, &tokenCalls, `{"tracks":{"items":[]}}`)
	tokens := NewTokenCache("id", "secret", server.URL+"/api/token", server.Client(), nil)

	song, err := NewSpotifyProvider(server.Client(), server.URL+"/v1", tokens).Search(context.Background(), "nothing")
	if err != nil || song != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", song, err)
	}
}

func TestJioSaavnSearch(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantTitle   string
		wantArtist  string
		wantImage   string
		wantPreview string
		wantNil     bool
	}{
		{
			name: "image list takes the last entry",
			body: `{"data":{"results":[{"name":"Kesariya","primaryArtists":"Arijit Singh",
				"image":[{"quality":"50x50","url":"https://i/50.jpg"},{"quality":"500x500","url":"https://i/500.jpg"}],
				"downloadUrl":[{"quality":"96kbps","url":"https://d/96.mp4"},{"quality":"320kbps","url":"https://d/320.mp4"}]}]}}`,
			wantTitle:   "Kesariya",
			wantArtist:  "Arijit Singh",
			wantImage:   "https://i/500.jpg",
			wantPreview: "https://d/320.mp4",
		},
		{
			name: "legacy link fields and structured artists",
			body: `{"data":{"results":[{"title":"Tum Hi Ho",
				"artists":{"primary":[{"name":"Arijit Singh"},{"name":"Mithoon"}]},
				"image":[{"link":"https://i/legacy.jpg"}]}]}}`,
			wantTitle:  "Tum Hi Ho",
			wantArtist: "Arijit Singh, Mithoon",
			wantImage:  "https://i/legacy.jpg",
		},
		{
			name:       "image as plain string",
			body:       `{"data":{"results":[{"name":"Song","image":"https://i/one.jpg"}]}}`,
			wantTitle:  "Song",
			wantArtist: fallback.UnknownArtist,
			wantImage:  "https://i/one.jpg",
		},
		{
			name:       "missing image uses placeholder",
			body:       `{"data":{"results":[{"name":"Bare"}]}}`,
			wantTitle:  "Bare",
			wantArtist: fallback.UnknownArtist,
			wantImage:  fallback.DefaultSongImage,
		},
		{
			name:    "empty results",
			body:    `{"data":{"results":[]}}`,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/search/songs" || r.URL.Query().Get("query") == "" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			song, err := NewJioSaavnProvider(server.Client(), server.URL+"/api").Search(context.Background(), "q")
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if tt.wantNil {
				if song != nil {
					t.Fatalf("expected nil, got %+v", song)
				}
				return
			}
			if song.Title != tt.wantTitle || song.Artist != tt.wantArtist || song.Image != tt.wantImage {
				t.Fatalf("unexpected song %+v", song)
			}
			if tt.wantPreview == "" {
				if song.Preview != nil {
					t.Fatalf("expected nil preview, got %q", *song.Preview)
				}
			} else if song.Preview == nil || *song.Preview != tt.wantPreview {
				t.Fatalf("preview = %v, want %q", song.Preview, tt.wantPreview)
			}
			if song.Source != "jiosaavn" {
				t.Fatalf("unexpected source %q", song.Source)
			}
		})
	}
}

func TestJioSaavnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewJioSaavnProvider(server.Client(), server.URL).Search(context.Background(), "q")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestHandleSearch(t *testing.T) {
	found := &stubProvider{name: "a", song: &Song{Title: "Hit", Artist: "Band", Image: fallback.DefaultSongImage, Source: "a"}}

	tests := []struct {
		name     string
		provider *stubProvider
		query    string
		want     int
	}{
		{"found", found, "?q=hit", http.StatusOK},
		{"blank", found, "?q=%20", http.StatusBadRequest},
		{"missing", &stubProvider{name: "a"}, "?q=nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewResolver(tt.provider))
			rec := httptest.NewRecorder()
			h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/music/search"+tt.query, nil))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			var body SearchResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Song == nil || body.Song.Title != "Hit" {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
