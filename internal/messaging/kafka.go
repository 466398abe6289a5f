package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/pkg/models"
)

const (
	DefaultReadingEventsTopic = "reading-events"
	DLQSuffix                 = "-dlq"
	ConsumerGroup             = "reading-event-processors"

	maxRetries = 3
)

type EventType string

const (
	ReadingAdded   EventType = "reading_added"
	ReadingUpdated EventType = "reading_updated"
)

// ReadingEvent is published whenever a user's reading list changes.
type ReadingEvent struct {
	EventID    uuid.UUID            `json:"event_id"`
	Type       EventType            `json:"type"`
	UserID     int64                `json:"user_id"`
	BookID     int64                `json:"book_id"`
	ReadingID  int64                `json:"reading_id"`
	Status     models.ReadingStatus `json:"status"`
	Rating     *float64             `json:"rating,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	RetryCount int                  `json:"retry_count"`
}

func NewReadingEvent(eventType EventType, reading *models.Reading) ReadingEvent {
	return ReadingEvent{
		EventID:   uuid.New(),
		Type:      eventType,
		UserID:    reading.UserID,
		BookID:    reading.BookID,
		ReadingID: reading.ID,
		Status:    reading.Status,
		Rating:    reading.Rating,
		Timestamp: time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type EventBus struct {
	topic     string
	brokers   []string
	writer    messageWriter
	reader    messageReader
	dlqWriter messageWriter
	logger    *logrus.Logger
	baseDelay time.Duration
}

func NewEventBus(cfg *config.Config, logger *logrus.Logger) *EventBus {
	topic := cfg.Kafka.Topics.ReadingEvents
	if topic == "" {
		topic = DefaultReadingEventsTopic
	}

	return &EventBus{
		topic:   topic,
		brokers: cfg.Kafka.Brokers,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // all events of a user land on one partition
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          topic,
			GroupID:        ConsumerGroup,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		dlqWriter: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic + DLQSuffix,
			RequiredAcks: kafka.RequireOne,
		},
		logger:    logger,
		baseDelay: time.Second,
	}
}

func (eb *EventBus) Topic() string {
	return eb.topic
}

func (eb *EventBus) PublishReadingEvent(ctx context.Context, event ReadingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reading event: %w", err)
	}

	userKey := strconv.FormatInt(event.UserID, 10)
	message := kafka.Message{
		Key:   []byte(userKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := eb.writer.WriteMessages(ctx, message); err != nil {
		eb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to publish reading event")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	eb.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"user_id":  event.UserID,
		"topic":    eb.topic,
	}).Debug("Reading event published")

	return nil
}

// ConsumeReadingEvents blocks until ctx is done, handing each event to
// handler. Events that still fail after retries go to the DLQ topic.
func (eb *EventBus) ConsumeReadingEvents(ctx context.Context, handler func(context.Context, ReadingEvent) error) error {
	for {
		message, err := eb.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			eb.logger.WithError(err).Error("Failed to read message from Kafka")
			continue
		}

		var event ReadingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			eb.logger.WithError(err).Error("Failed to unmarshal reading event")
			continue
		}

		if err := eb.processWithRetry(ctx, &event, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			eb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to process reading event after retries")
			if dlqErr := eb.sendToDLQ(ctx, event, err); dlqErr != nil {
				eb.logger.WithError(dlqErr).Error("Failed to send message to DLQ")
			}
		}
	}
}

func (eb *EventBus) processWithRetry(ctx context.Context, event *ReadingEvent, handler func(context.Context, ReadingEvent) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := eb.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		event.RetryCount = attempt
		if lastErr = handler(ctx, *event); lastErr == nil {
			return nil
		}
		eb.logger.WithError(lastErr).WithFields(logrus.Fields{
			"event_id": event.EventID,
			"attempt":  attempt,
		}).Warn("Reading event processing failed")
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (eb *EventBus) sendToDLQ(ctx context.Context, event ReadingEvent, cause error) error {
	payload, err := json.Marshal(map[string]interface{}{
		"original_event": event,
		"error":          cause.Error(),
		"dlq_timestamp":  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.EventID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "original_topic", Value: []byte(eb.topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	}
	if err := eb.dlqWriter.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	eb.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"error":    cause.Error(),
	}).Warn("Reading event sent to DLQ")
	return nil
}

// Ping dials the first reachable broker.
func (eb *EventBus) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range eb.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no kafka brokers configured")
	}
	return fmt.Errorf("kafka unreachable: %w", lastErr)
}

func (eb *EventBus) Close() error {
	var errs []error
	if err := eb.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}
	if err := eb.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
	}
	if err := eb.dlqWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close DLQ writer: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}
	return nil
}
