package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeWriter реализует WriterInterface и просто запоминает, какие сообщения ему передали.
type fakeWriter struct {
	lastMessages []kafka.Message
	returnError  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	// Запоминаем все пришедшие сообщения
	f.lastMessages = append(f.lastMessages, msgs...)
	return f.returnError
}

func (f *fakeWriter) Close() error {
	return nil
}

func zapTestLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopmentConfig().Build(zap.AddCallerSkip(1))
	if err != nil {
		t.Fatalf("не удалось создать zap-логгер: %v", err)
	}
	return logger.Sugar()
}

func TestProducer_SendEvent_Success(t *testing.T) {
	// Подготовка «тихого» логгера
	logger := zapTestLogger(t)
	defer func() { _ = logger.Sync() }()

	// Подменяем Writer на fakeWriter
	fw := &fakeWriter{returnError: nil}
	p := &Producer{
		Writer: fw,
		Logger: logger,
	}

	ctx := context.Background()
	evt := Event{
		ScopeID:    "scope-1",
		Type:       EventTypePurchase,
		ProductIDs: []string{"p1", "p2"},
		Timestamp:  time.Now().UTC(),
	}

	// Выполняем SendEvent
	if err := p.SendEvent(ctx, evt); err != nil {
		t.Fatalf("ожидали, что SendEvent не вернёт ошибку, но получили: %v", err)
	}

	// Проверяем, что записалось ровно одно сообщение
	if len(fw.lastMessages) != 1 {
		t.Fatalf("ожидали 1 записанное сообщение, но получили %d", len(fw.lastMessages))
	}

	// Разбираем Value из сообщения и сравниваем с исходным Event
	var decoded Event
	if err := json.Unmarshal(fw.lastMessages[0].Value, &decoded); err != nil {
		t.Fatalf("не удалось разобрать записанное сообщение как JSON: %v", err)
	}
	if decoded.ScopeID != evt.ScopeID {
		t.Errorf("разобранный ScopeID не совпал: ожидали %q, получили %q", evt.ScopeID, decoded.ScopeID)
	}
	if decoded.Type != evt.Type {
		t.Errorf("разобранный EventType не совпал: ожидали %q, получили %q", evt.Type, decoded.Type)
	}
	// Проверим хотя бы одну категорию
	if len(decoded.ProductIDs) != len(evt.ProductIDs) {
		t.Errorf("размер среза ProductIDs не совпал: ожидали %d, получили %d", len(evt.ProductIDs), len(decoded.ProductIDs))
	}
}

func TestProducer_SendEvent_WriteError(t *testing.T) {
	logger := zapTestLogger(t)
	defer func() { _ = logger.Sync() }()

	// fakeWriter сконфигурирован так, чтобы возвращать ошибку при записи
	fw := &fakeWriter{returnError: errors.New("write failed")}
	p := &Producer{
		Writer: fw,
		Logger: logger,
	}

	ctx := context.Background()
	evt := Event{
		ScopeID:    "scope-2",
		Type:       EventTypeView,
		ProductIDs: []string{"p5"},
		Timestamp:  time.Now().UTC(),
	}

	// Ожидаем, что SendEvent вернёт ошибку, потому что fakeWriter.returnError != nil
	if err := p.SendEvent(ctx, evt); err == nil {
		t.Fatalf("ожидали ошибку от SendEvent, но получили nil")
	}
}

func TestProducer_SendEvent_KeyedByScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mw := NewMockWriterInterface(ctrl)
	p := &Producer{Writer: mw, Logger: zapTestLogger(t)}

	evt := NewPurchaseEvent("scope-9", []string{"p1", "p2"}, 3, decimal.RequireFromString("59.98"))

	mw.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msgs ...kafka.Message) error {
			if len(msgs) != 1 {
				t.Fatalf("ожидали 1 сообщение, получили %d", len(msgs))
			}
			if string(msgs[0].Key) != "scope-9" {
				t.Errorf("ожидали ключ scope-9, получили %q", msgs[0].Key)
			}

			var decoded Event
			if err := json.Unmarshal(msgs[0].Value, &decoded); err != nil {
				t.Fatalf("не удалось разобрать сообщение: %v", err)
			}
			if !decoded.Total.Equal(evt.Total) {
				t.Errorf("ожидали total %s, получили %s", evt.Total, decoded.Total)
			}
			if decoded.Quantity != 3 {
				t.Errorf("ожидали quantity 3, получили %d", decoded.Quantity)
			}
			return nil
		})

	if err := p.SendEvent(context.Background(), evt); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
}

func TestProducer_SendEvent_UnknownType(t *testing.T) {
	fw := &fakeWriter{}
	p := &Producer{Writer: fw, Logger: zapTestLogger(t)}

	if err := p.SendEvent(context.Background(), Event{ScopeID: "s", Type: "refund"}); err == nil {
		t.Fatal("ожидали ошибку для неизвестного типа события")
	}
	if len(fw.lastMessages) != 0 {
		t.Errorf("сообщение не должно было уйти в Kafka")
	}
}

func TestProducer_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mw := NewMockWriterInterface(ctrl)
	mw.EXPECT().Close().Return(nil)

	p := &Producer{Writer: mw, Logger: zapTestLogger(t)}
	if err := p.Close(); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
}

func TestNopProducer(t *testing.T) {
	var p EventProducer = NopProducer{Logger: zapTestLogger(t)}

	if err := p.SendEvent(context.Background(), NewViewEvent("s", "p1")); err != nil {
		t.Fatalf("NopProducer не должен возвращать ошибку: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("NopProducer.Close не должен возвращать ошибку: %v", err)
	}
}
