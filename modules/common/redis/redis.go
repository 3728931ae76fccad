package redis

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"glamo-server/modules/common/config"
)

// Connect - Redis client for the shared token store; nil when disabled or unreachable
func Connect(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled() {
		log.Println("ℹ️  [Redis] REDIS_HOST not set, using in-process token cache")
		return nil
	}

	log.Printf("🔌 [Redis] Connecting to %s", cfg.GetRedisAddr())

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ [Redis] Ping failed, falling back to in-process token cache: %v", err)
		_ = rdb.Close()
		return nil
	}

	log.Println("✅ [Redis] Connected")
	return rdb
}
