package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/pkg/models"
)

// RateLimitService is a sliding-window limiter over Redis sorted sets.
type RateLimitService struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	now         func() time.Time
}

func NewRateLimitService(cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *RateLimitService {
	return &RateLimitService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// CheckLimit records one request for clientID and reports the remaining
// budget. The request being checked counts against the limit.
func (s *RateLimitService) CheckLimit(ctx context.Context, clientID, tier string) (*models.RateLimitInfo, error) {
	limit := s.limitForTier(tier)
	window := s.config.Auth.RateLimit.Window

	key := fmt.Sprintf("rate_limit:client:%s", clientID)
	now := s.now()
	windowStart := now.Add(-window)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipe := s.redisClient.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open when Redis is down.
		s.logger.WithError(err).Error("Failed to execute rate limit pipeline")
		return &models.RateLimitInfo{
			Limit:     limit,
			Remaining: limit,
			ResetTime: now.Add(window).Unix(),
		}, nil
	}

	remaining := limit - int(countCmd.Val())
	if remaining < 0 {
		remaining = 0
	}

	return &models.RateLimitInfo{
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(window).Unix(),
	}, nil
}

func (s *RateLimitService) IsAllowed(ctx context.Context, clientID, tier string) (bool, *models.RateLimitInfo, error) {
	info, err := s.CheckLimit(ctx, clientID, tier)
	if err != nil {
		return false, nil, err
	}
	return info.Remaining > 0, info, nil
}

func (s *RateLimitService) limitForTier(tier string) int {
	if tier == "premium" {
		return s.config.Auth.RateLimit.Premium
	}
	return s.config.Auth.RateLimit.Default
}
