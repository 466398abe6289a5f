package middleware

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
)

const CacheHeader = "X-Cache"

const defaultCacheTTL = 5 * time.Minute

// ResponseCache stores successful GET responses of a route group in Redis.
// Catalogue data is the same for every client, so keys ignore the caller.
type ResponseCache struct {
	redis   *redis.Client
	ttl     time.Duration
	maxSize int64
	prefix  string
	logger  *logrus.Logger
}

type cachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// NewResponseCache returns nil when caching is disabled or Redis is missing.
// A nil cache passes every request through.
func NewResponseCache(client *redis.Client, cfg config.CacheConfig, logger *logrus.Logger) *ResponseCache {
	if client == nil || !cfg.Enabled {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "catalog"
	}
	return &ResponseCache{
		redis:   client,
		ttl:     ttl,
		maxSize: cfg.MaxSize,
		prefix:  prefix,
		logger:  logger,
	}
}

// Middleware serves GET requests from the cache and invalidates the whole
// cache after a successful write.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	if rc == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if status := c.Writer.Status(); status >= 200 && status < 300 {
				rc.Invalidate(c.Request.Context())
			}
			return
		}

		key := rc.key(c.Request)
		if cached, ok := rc.lookup(c.Request.Context(), key); ok {
			c.Header(CacheHeader, "HIT")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		writer := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header(CacheHeader, "MISS")

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}
		if rc.maxSize > 0 && int64(len(writer.body)) > rc.maxSize {
			rc.logger.WithFields(logrus.Fields{
				"size":     len(writer.body),
				"max_size": rc.maxSize,
			}).Debug("Response too large to cache")
			return
		}
		rc.store(c.Request.Context(), key, &cachedResponse{
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body,
		})
	}
}

// Invalidate drops every cached response.
func (rc *ResponseCache) Invalidate(ctx context.Context) {
	if rc == nil {
		return
	}
	iter := rc.redis.Scan(ctx, 0, rc.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		rc.logger.WithError(err).Warn("Failed to scan cache keys for invalidation")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.redis.Del(ctx, keys...).Err(); err != nil {
		rc.logger.WithError(err).WithField("count", len(keys)).Warn("Failed to invalidate cache keys")
		return
	}
	rc.logger.WithField("count", len(keys)).Debug("Invalidated cached responses")
}

func (rc *ResponseCache) key(r *http.Request) string {
	hash := sha1.Sum([]byte(strings.Join([]string{r.URL.Path, r.URL.RawQuery}, "?")))
	return fmt.Sprintf("%s:%x", rc.prefix, hash)
}

func (rc *ResponseCache) lookup(ctx context.Context, key string) (*cachedResponse, bool) {
	raw, err := rc.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			rc.logger.WithError(err).Warn("Failed to read cached response")
		}
		return nil, false
	}
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (rc *ResponseCache) store(ctx context.Context, key string, response *cachedResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := rc.redis.Set(ctx, key, data, rc.ttl).Err(); err != nil {
		rc.logger.WithError(err).WithField("cache_key", key).Warn("Failed to cache response")
	}
}

// cacheWriter keeps a copy of the body written through it.
type cacheWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *cacheWriter) Write(data []byte) (int, error) {
	w.body = append(w.body, data...)
	return w.ResponseWriter.Write(data)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
