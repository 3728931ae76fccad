package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"glamo-server/modules/analyze"
	"glamo-server/modules/chat"
	"glamo-server/modules/common/config"
	"glamo-server/modules/common/gemini"
	"glamo-server/modules/common/redis"
	"glamo-server/modules/common/utils"
	"glamo-server/modules/music"
	"glamo-server/modules/suggest"
)

const serviceName = "glamo-photo-assistant"

// Server - every handler the router mounts
type Server struct {
	analyze   *analyze.Handler
	chat      *chat.Handler
	hub       *chat.Hub
	suggest   *suggest.Handler
	music     *music.Handler
	staticDir string
}

// NewServer wires the model access layer, music providers and feature handlers.
func NewServer(cfg *config.Config) (*Server, error) {
	pool, err := gemini.NewKeyPool(cfg.GeminiKeys)
	if err != nil {
		return nil, err
	}
	model := gemini.NewClient(pool, gemini.NewGenaiGenerator(cfg.GeminiModel),
		gemini.WithTimeout(cfg.GeminiTimeout),
		gemini.WithBackoff(cfg.GeminiBackoff, cfg.GeminiMaxBackoff),
	)
	log.Printf("🔑 [Gemini] %d key(s) in rotation, model=%s", pool.Size(), cfg.GeminiModel)

	resolver := newResolver(cfg)
	chatService := chat.NewService(model)
	maxUpload := cfg.MaxUploadBytes

	return &Server{
		analyze:   analyze.NewHandler(analyze.NewService(model, resolver, cfg.MaxSongs, cfg.MaxImageEdge), maxUpload),
		chat:      chat.NewHandler(chatService),
		hub:       chat.NewHub(chatService),
		suggest:   suggest.NewHandler(suggest.NewService(model, cfg.MaxImageEdge), maxUpload),
		music:     music.NewHandler(resolver),
		staticDir: cfg.StaticDir,
	}, nil
}

func newResolver(cfg *config.Config) *music.Resolver {
	httpClient := &http.Client{Timeout: cfg.MusicTimeout}

	var providers []music.Provider
	if cfg.SpotifyEnabled() {
		store := music.NewMemoryTokenStore()
		if rdb := redis.Connect(cfg); rdb != nil {
			store = music.NewRedisTokenStore(rdb, "")
		}
		tokens := music.NewTokenCache(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL, httpClient, store)
		providers = append(providers, music.NewSpotifyProvider(httpClient, cfg.SpotifyAPIURL, tokens))
	} else {
		log.Println("⚠️  [Music] Spotify credentials missing, JioSaavn only")
	}
	providers = append(providers, music.NewJioSaavnProvider(httpClient, cfg.JioSaavnAPIURL))

	return music.NewResolver(providers...)
}

// Router - routes plus CORS and request logging
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)
	r.Use(enableCORS)

	r.HandleFunc("/", s.home).Methods(http.MethodGet)
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.hub.HandleMetrics).Methods(http.MethodGet)

	r.HandleFunc("/analyze", s.analyze.HandleAnalyze).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/chat", s.chat.HandleChat).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/ws/chat", s.hub.HandleWebSocket)
	r.HandleFunc("/suggest_style_app", s.suggest.HandleSuggest).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/music/search", s.music.HandleSearch).Methods(http.MethodGet, http.MethodOptions)

	if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	} else {
		log.Printf("⚠️  Static folder not found -> %s", s.staticDir)
	}

	return r
}

// home - static index page when present, health JSON otherwise
func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	healthCheck(w, r)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working behind the logger.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		short := id
		if len(short) > 8 {
			short = short[:8]
		}

		start := time.Now()
		log.Printf("➡️  [%s] %s %s", short, r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("⬅️  [%s] %s %s - %d (%s)", short, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize server: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Glamo server starting on port %s", cfg.Port)
		log.Printf("📡 Chat WebSocket: ws://localhost:%s/ws/chat", cfg.Port)
		log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
		serverErr <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	case <-ctx.Done():
		log.Println("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		server.hub.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
