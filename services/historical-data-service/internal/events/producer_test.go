package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(writers map[string]*fakeWriter) *Producer {
	p := NewProducer([]string{"localhost:9092"}, "test", zap.NewNop())
	p.newWriter = func(topic string) messageWriter {
		w := &fakeWriter{}
		writers[topic] = w
		return w
	}
	return p
}

func TestRangeEvents_PublishRangeAdjusted(t *testing.T) {
	writers := map[string]*fakeWriter{}
	publisher := NewRangeEvents(newTestProducer(writers), "range-events")

	event := model.RangeAdjustedEvent{
		Source:         "candles",
		SymbolID:       3,
		Timeframe:      "1h",
		OriginalStart:  "2020-01-01",
		AdjustedStart:  "2023-10-01",
		EndDate:        "2024-01-01",
		SelectedMonths: 48,
		MaxMonths:      3,
	}
	require.NoError(t, publisher.PublishRangeAdjusted(context.Background(), event))

	w := writers["range-events"]
	require.NotNil(t, w)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "1h", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte(EventTypeRangeAdjusted)})

	var decoded model.RangeAdjustedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestProducer_ReusesWriterPerTopic(t *testing.T) {
	writers := map[string]*fakeWriter{}
	p := newTestProducer(writers)

	require.NoError(t, p.Publish(context.Background(), "a", Message{Key: "1", Value: 1}))
	require.NoError(t, p.Publish(context.Background(), "a", Message{Key: "2", Value: 2}))
	require.NoError(t, p.Publish(context.Background(), "b", Message{Key: "3", Value: 3}))

	assert.Len(t, writers, 2)
	assert.Len(t, writers["a"].messages, 2)

	require.NoError(t, p.Close())
	assert.True(t, writers["a"].closed)
	assert.True(t, writers["b"].closed)
}

func TestProducer_PublishError(t *testing.T) {
	p := NewProducer(nil, "test", zap.NewNop())
	p.newWriter = func(string) messageWriter {
		return &fakeWriter{err: errors.New("broker down")}
	}

	err := p.Publish(context.Background(), "a", Message{Key: "k", Value: "v"})
	assert.EqualError(t, err, "broker down")
}

func TestNopPublisher(t *testing.T) {
	var publisher RangePublisher = NopPublisher{}
	assert.NoError(t, publisher.PublishRangeAdjusted(context.Background(), model.RangeAdjustedEvent{}))
}
