package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - every environment-driven setting of the server
type Config struct {
	// Gemini
	GeminiKeys       []string
	GeminiModel      string
	GeminiTimeout    time.Duration
	GeminiBackoff    time.Duration
	GeminiMaxBackoff time.Duration

	// Spotify
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyAPIURL       string
	SpotifyTokenURL     string

	// JioSaavn
	JioSaavnAPIURL string

	// Music
	MusicTimeout time.Duration
	MaxSongs     int

	// Image
	MaxImageEdge   int
	MaxUploadBytes int64

	// Redis (optional token store)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Server
	Port      string
	StaticDir string
}

// LoadConfig - load .env (when present) and the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Gemini: %s (%d keys, timeout %s)", cfg.GeminiModel, len(cfg.GeminiKeys), cfg.GeminiTimeout)
	log.Printf("   Spotify: enabled=%v", cfg.SpotifyEnabled())
	log.Printf("   Redis: enabled=%v", cfg.RedisEnabled())

	return cfg, nil
}

// FromEnv - build and validate a Config from the current environment only
func FromEnv() (*Config, error) {
	keys := ParseList(os.Getenv("GEMINI_KEYS"))
	if len(keys) == 0 {
		keys = ParseList(os.Getenv("GEMINI_API_KEY"))
	}

	cfg := &Config{
		GeminiKeys:       keys,
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout:    time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 40)) * time.Second,
		GeminiBackoff:    time.Duration(getEnvInt("GEMINI_BACKOFF_MS", 500)) * time.Millisecond,
		GeminiMaxBackoff: time.Duration(getEnvInt("GEMINI_MAX_BACKOFF_MS", 6000)) * time.Millisecond,

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyAPIURL:       getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
		SpotifyTokenURL:     getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),

		JioSaavnAPIURL: getEnv("JIOSAAVN_API_URL", "https://saavn.dev/api"),

		MusicTimeout: time.Duration(getEnvInt("MUSIC_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxSongs:     getEnvInt("MAX_SONGS", 10),

		MaxImageEdge:   getEnvInt("MAX_IMAGE_EDGE", 512),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		Port:      getEnv("PORT", "8080"),
		StaticDir: getEnv("STATIC_DIR", "static"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.GeminiKeys) == 0 {
		return fmt.Errorf("GEMINI_KEYS is required (comma-separated Gemini API keys)")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}
	if c.MaxSongs <= 0 {
		return fmt.Errorf("MAX_SONGS must be positive")
	}
	if c.MaxImageEdge <= 0 {
		return fmt.Errorf("MAX_IMAGE_EDGE must be positive")
	}
	return nil
}

// SpotifyEnabled - both halves of the client credentials are present
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// RedisEnabled - a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// GetRedisAddr - host:port for the Redis client
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// ParseList splits a comma-separated value, trimming entries and dropping blanks.
func ParseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return parsed
		}
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, raw, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}
