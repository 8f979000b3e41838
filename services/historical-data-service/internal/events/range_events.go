package events

import (
	"context"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"

	"github.com/segmentio/kafka-go"
)

// EventTypeRangeAdjusted marks events emitted when a requested range was clamped
const EventTypeRangeAdjusted = "range.adjusted"

// RangePublisher publishes range adjustment events
type RangePublisher interface {
	PublishRangeAdjusted(ctx context.Context, event model.RangeAdjustedEvent) error
}

// RangeEvents publishes range adjustments to one Kafka topic
type RangeEvents struct {
	producer *Producer
	topic    string
}

// NewRangeEvents creates a range event publisher on top of a producer
func NewRangeEvents(producer *Producer, topic string) *RangeEvents {
	return &RangeEvents{
		producer: producer,
		topic:    topic,
	}
}

// PublishRangeAdjusted sends the event keyed by timeframe
func (e *RangeEvents) PublishRangeAdjusted(ctx context.Context, event model.RangeAdjustedEvent) error {
	return e.producer.Publish(ctx, e.topic, Message{
		Key:   event.Timeframe,
		Value: event,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeRangeAdjusted)},
			{Key: "source", Value: []byte(event.Source)},
		},
	})
}

// NopPublisher drops events; used when no brokers are configured
type NopPublisher struct{}

// PublishRangeAdjusted does nothing
func (NopPublisher) PublishRangeAdjusted(context.Context, model.RangeAdjustedEvent) error {
	return nil
}
