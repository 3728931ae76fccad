package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoCredentials - Spotify client id/secret are not configured
var ErrNoCredentials = errors.New("music: spotify credentials not configured")

const (
	defaultTokenLifetime = time.Hour
	tokenExpirySkew      = 30 * time.Second
)

// Token - cached bearer token
type Token struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

// Valid - usable at now
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.Expiry)
}

// TokenStore holds the single cached token slot.
type TokenStore interface {
	Load(ctx context.Context) (Token, bool, error)
	Store(ctx context.Context, t Token) error
	Clear(ctx context.Context) error
}

type memoryTokenStore struct {
	mu    sync.RWMutex
	token Token
	ok    bool
}

// NewMemoryTokenStore - process-local slot
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (m *memoryTokenStore) Load(context.Context) (Token, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.ok, nil
}

func (m *memoryTokenStore) Store(_ context.Context, t Token) error {
	m.mu.Lock()
	m.token, m.ok = t, true
	m.mu.Unlock()
	return nil
}

func (m *memoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	m.token, m.ok = Token{}, false
	m.mu.Unlock()
	return nil
}

type redisTokenStore struct {
	rdb *redis.Client
	key string
}

// NewRedisTokenStore - slot shared by every replica, expiring with the token
func NewRedisTokenStore(rdb *redis.Client, key string) TokenStore {
	if key == "" {
		key = "glamo:spotify:token"
	}
	return &redisTokenStore{rdb: rdb, key: key}
}

func (r *redisTokenStore) Load(ctx context.Context) (Token, bool, error) {
	data, err := r.rdb.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, fmt.Errorf("music: redis get token: %w", err)
	}

	var t Token
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Token{}, false, fmt.Errorf("music: decode cached token: %w", err)
	}
	return t, true, nil
}

func (r *redisTokenStore) Store(ctx context.Context, t Token) error {
	ttl := time.Until(t.Expiry)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("music: redis set token: %w", err)
	}
	return nil
}

func (r *redisTokenStore) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

// ExchangeFunc performs the client-credentials exchange.
type ExchangeFunc func(ctx context.Context) (*oauth2.Token, error)

// TokenCache - get-or-refresh access to the Spotify bearer token. Concurrent
// refreshes are not coalesced; the last writer wins, which is harmless because
// every exchange yields an equally valid token.
type TokenCache struct {
	store    TokenStore
	exchange ExchangeFunc
	now      func() time.Time
}

// NewTokenCache - client-credentials exchange against tokenURL with basic auth
func NewTokenCache(clientID, clientSecret, tokenURL string, httpClient *http.Client, store TokenStore) *TokenCache {
	if store == nil {
		store = NewMemoryTokenStore()
	}

	var exchange ExchangeFunc
	if clientID != "" && clientSecret != "" {
		conf := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		exchange = func(ctx context.Context) (*oauth2.Token, error) {
			if httpClient != nil {
				ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
			}
			return conf.Token(ctx)
		}
	}

	return newTokenCache(store, exchange, time.Now)
}

func newTokenCache(store TokenStore, exchange ExchangeFunc, now func() time.Time) *TokenCache {
	return &TokenCache{store: store, exchange: exchange, now: now}
}

// Token returns a valid bearer token, refreshing it when absent or expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if c == nil || c.exchange == nil {
		return "", ErrNoCredentials
	}

	cached, ok, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("⚠️  [Spotify] Token cache read failed, refreshing: %v", err)
	} else if ok && cached.Valid(c.now()) {
		return cached.AccessToken, nil
	}

	fresh, err := c.exchange(ctx)
	if err != nil {
		return "", fmt.Errorf("music: spotify token exchange: %w", err)
	}
	if fresh.AccessToken == "" {
		return "", fmt.Errorf("music: spotify token exchange returned no access token")
	}

	expiry := fresh.Expiry
	if expiry.IsZero() {
		expiry = c.now().Add(defaultTokenLifetime)
	}
	t := Token{AccessToken: fresh.AccessToken, Expiry: expiry.Add(-tokenExpirySkew)}

	if err := c.store.Store(ctx, t); err != nil {
		log.Printf("⚠️  [Spotify] Token cache write failed: %v", err)
	}
	log.Printf("🔑 [Spotify] Token refreshed, valid until %s", t.Expiry.Format(time.RFC3339))
	return t.AccessToken, nil
}

// Invalidate drops the cached token, e.g. after a 401.
func (c *TokenCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		log.Printf("⚠️  [Spotify] Token cache clear failed: %v", err)
	}
}
