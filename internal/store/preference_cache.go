package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/pkg/models"
)

// PreferenceCache keeps user preferences in Redis for ttl. Redis failures
// are logged and never surface to callers.
type PreferenceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewPreferenceCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *PreferenceCache {
	return &PreferenceCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func preferenceKey(userID int64) string {
	return fmt.Sprintf("preferences:user:%d", userID)
}

// Get returns the cached preference, or nil on a miss.
func (c *PreferenceCache) Get(ctx context.Context, userID int64) *models.UserPreference {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, preferenceKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to read cached preferences")
		}
		return nil
	}

	var pref models.UserPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Discarding corrupt cached preferences")
		return nil
	}
	return &pref
}

func (c *PreferenceCache) Set(ctx context.Context, pref *models.UserPreference) {
	if c == nil || c.client == nil || pref == nil {
		return
	}
	data, err := json.Marshal(pref)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, preferenceKey(pref.UserID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", pref.UserID).Warn("Failed to cache preferences")
	}
}

func (c *PreferenceCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, preferenceKey(userID)).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate cached preferences")
	}
}
