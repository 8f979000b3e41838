package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheConfig holds configuration for the cache middleware
type CacheConfig struct {
	Enabled         bool
	DefaultDuration time.Duration
	PrefixKey       string
	ExcludedPaths   []string
}

// ResponseStore keeps cached response bodies
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client as a ResponseStore
func NewRedisStore(client *redis.Client) ResponseStore {
	return redisStore{client: client}
}

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key).Bytes()
}

func (s redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// ResponseCache caches successful GET responses. Responses carrying
// X-Range-Adjusted are cached with their header restored on a hit.
func ResponseCache(store ResponseStore, config CacheConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		for _, path := range config.ExcludedPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		cacheKey := generateCacheKey(c, config.PrefixKey)
		ctx := c.Request.Context()

		cached, err := store.Get(ctx, cacheKey)
		if err == nil {
			logger.Debug("Cache hit",
				zap.String("path", c.Request.URL.Path),
				zap.String("cache_key", cacheKey))

			if adjusted, err := store.Get(ctx, cacheKey+":adjusted"); err == nil && string(adjusted) == "true" {
				c.Header("X-Range-Adjusted", "true")
			}
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		} else if err != redis.Nil {
			logger.Warn("Cache lookup failed", zap.Error(err), zap.String("cache_key", cacheKey))
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}

		duration := config.DefaultDuration
		if err := store.Set(ctx, cacheKey, writer.body.Bytes(), duration); err != nil {
			logger.Error("Failed to set cache",
				zap.Error(err),
				zap.String("cache_key", cacheKey))
			return
		}
		if c.Writer.Header().Get("X-Range-Adjusted") == "true" {
			if err := store.Set(ctx, cacheKey+":adjusted", []byte("true"), duration); err != nil {
				logger.Warn("Failed to cache range flag", zap.Error(err))
			}
		}

		logger.Debug("Cache set",
			zap.String("path", c.Request.URL.Path),
			zap.String("cache_key", cacheKey),
			zap.Duration("duration", duration))
	}
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// generateCacheKey hashes path and query into a prefixed key
func generateCacheKey(c *gin.Context, prefix string) string {
	hash := sha256.New()
	io.WriteString(hash, c.Request.URL.Path)
	if query := c.Request.URL.RawQuery; query != "" {
		io.WriteString(hash, "?"+query)
	}
	return prefix + ":" + hex.EncodeToString(hash.Sum(nil))
}
