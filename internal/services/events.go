package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/messaging"
)

// ReadingEventProcessor consumes reading events published by UserService.
// A change to a user's reading list evicts that user's cached preferences so
// every instance reloads them from the store on the next request.
type ReadingEventProcessor struct {
	preferences PreferenceCache
	metrics     *RecommendationMetrics
	logger      *logrus.Logger
}

// NewReadingEventProcessor wires the consumer. preferences may be nil.
func NewReadingEventProcessor(preferences PreferenceCache, metrics *RecommendationMetrics, logger *logrus.Logger) *ReadingEventProcessor {
	if preferences == nil {
		preferences = noPreferenceCache{}
	}
	return &ReadingEventProcessor{
		preferences: preferences,
		metrics:     metrics,
		logger:      logger,
	}
}

func (p *ReadingEventProcessor) Handle(ctx context.Context, event messaging.ReadingEvent) error {
	p.preferences.Invalidate(ctx, event.UserID)
	p.metrics.readingEventConsumed(string(event.Type), string(event.Status))
	p.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"user_id":  event.UserID,
		"book_id":  event.BookID,
		"status":   event.Status,
	}).Info("Reading event consumed")
	return nil
}
