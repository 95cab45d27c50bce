package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	kgo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	resultProcessed = "processed"
	resultFailed    = "failed"
	resultSkipped   = "skipped"
	resultMalformed = "malformed"
)

var eventsConsumed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_events_consumed_total",
		Help: "Storefront events read from Kafka, by type and result",
	},
	[]string{"type", "result"},
)

func init() {
	prometheus.MustRegister(eventsConsumed)
}

// Consumer реализует EventConsumer.
type Consumer struct {
	Reader ReaderInterface
	Logger *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.SugaredLogger) EventConsumer {
	return &Consumer{
		Reader: &kafkaReaderWrapper{
			Reader: kgo.NewReader(kgo.ReaderConfig{
				Brokers:  brokers,
				Topic:    topic,
				GroupID:  groupID,
				MinBytes: 10e3, // 10KB
				MaxBytes: 10e6, // 10MB
			}),
		},
		Logger: logger,
	}
}

type kafkaReaderWrapper struct {
	Reader *kgo.Reader
}

func (w *kafkaReaderWrapper) ReadMessage(ctx context.Context) (kgo.Message, error) {
	return w.Reader.ReadMessage(ctx)
}

func (w *kafkaReaderWrapper) Close() error {
	return w.Reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, Event) error) {
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			c.Logger.Errorf("Failed to read message: %v", err)
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.Logger.Errorf("Failed to unmarshal event: %v", err)
			eventsConsumed.WithLabelValues("", resultMalformed).Inc()
			continue
		}
		if !event.Type.Valid() {
			c.Logger.Warnw("skipping event with unknown type", "type", event.Type, "offset", msg.Offset)
			eventsConsumed.WithLabelValues("unknown", resultSkipped).Inc()
			continue
		}
		// продюсер кладёт scope в ключ сообщения
		if event.ScopeID == "" {
			event.ScopeID = string(msg.Key)
		}

		if err := handler(ctx, event); err != nil {
			c.Logger.Errorw("Failed to process event", "type", event.Type, "scope", event.ScopeID, "err", err)
			eventsConsumed.WithLabelValues(string(event.Type), resultFailed).Inc()
			continue
		}
		eventsConsumed.WithLabelValues(string(event.Type), resultProcessed).Inc()
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
