package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/myndreader/internal/messaging"
	"github.com/temcen/myndreader/internal/store"
	"github.com/temcen/myndreader/pkg/models"
)

func TestReadingEventProcessor_EvictsCachedPreferences(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := store.NewPreferenceCache(client, time.Minute, testLogger())
	metrics := NewRecommendationMetrics(prometheus.NewRegistry(), testLogger())
	processor := NewReadingEventProcessor(cache, metrics, testLogger())
	ctx := context.Background()

	cache.Set(ctx, models.DefaultPreference(7))
	cache.Set(ctx, models.DefaultPreference(8))
	require.NotNil(t, cache.Get(ctx, 7))

	event := messaging.NewReadingEvent(messaging.ReadingAdded, &models.Reading{
		ID:     3,
		UserID: 7,
		BookID: 42,
		Status: models.StatusCompleted,
	})
	require.NoError(t, processor.Handle(ctx, event))

	assert.Nil(t, cache.Get(ctx, 7))
	assert.NotNil(t, cache.Get(ctx, 8), "other users keep their cache")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.readingEvents.WithLabelValues("reading_added", "completed")))
}

func TestReadingEventProcessor_WithoutCache(t *testing.T) {
	processor := NewReadingEventProcessor(nil, nil, testLogger())

	err := processor.Handle(context.Background(), messaging.ReadingEvent{Type: messaging.ReadingUpdated, UserID: 1})
	assert.NoError(t, err)
}
