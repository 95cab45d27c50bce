package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer struct {
	Writer WriterInterface // Используем интерфейс
	Logger *zap.SugaredLogger
}

func NewProducer(brokers []string, topic string, logger *zap.SugaredLogger) *Producer {
	return &Producer{
		Writer: &kafkaWriterWrapper{ // Обёртка над реальным Writer
			Writer: &kafka.Writer{
				Addr:         kafka.TCP(brokers...),
				Topic:        topic,
				Balancer:     &kafka.Hash{},
				BatchTimeout: 50 * time.Millisecond,
			},
		},
		Logger: logger,
	}
}

// Обёртка для реализации интерфейса
type kafkaWriterWrapper struct {
	Writer *kafka.Writer
}

func (w *kafkaWriterWrapper) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return w.Writer.WriteMessages(ctx, msgs...)
}

func (w *kafkaWriterWrapper) Close() error {
	return w.Writer.Close()
}

// SendEvent пишет событие в топик. Ключ - scope, чтобы события одного посетителя
// попадали в одну партицию.
func (p *Producer) SendEvent(ctx context.Context, event Event) error {
	if !event.Type.Valid() {
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ScopeID),
		Value: value,
	})

	if err != nil {
		p.Logger.Errorf("Failed to write Kafka message: %v", err)
		return err
	}

	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NopProducer используется, когда брокеры не настроены: события отбрасываются
type NopProducer struct {
	Logger *zap.SugaredLogger
}

func (p NopProducer) SendEvent(_ context.Context, event Event) error {
	if p.Logger != nil {
		p.Logger.Debugw("analytics disabled, event dropped", "type", event.Type, "scope", event.ScopeID)
	}
	return nil
}

func (NopProducer) Close() error {
	return nil
}
