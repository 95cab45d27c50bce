package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
)

// fakeReader реализует ReaderInterface и отдаёт заранее подготовленные сообщения и ошибки.
type fakeReader struct {
	// messages - список сообщений, которые нужно отдать в порядке индексов.
	messages []kafka.Message
	// errors - ошибки, которые нужно возвращать после того, как закончатся messages.
	// Количество ошибок может быть меньше, чем количество циклов чтения; тогда после исчерпания всех
	// сообщений и всех ошибок вернётся context.Canceled.
	errors []error
	// idx указывает, сколько раз уже вызывался ReadMessage.
	idx int
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	// Если ещё есть необработанные сообщения - возвращаем текущее
	if f.idx < len(f.messages) {
		msg := f.messages[f.idx]
		f.idx++
		return msg, nil
	}
	// Если уже отдали все сообщения, но остались ошибки - возвращаем следующую ошибку
	errIdx := f.idx - len(f.messages)
	if errIdx < len(f.errors) {
		err := f.errors[errIdx]
		f.idx++
		return kafka.Message{}, err
	}
	// Иначе - возвращаем context.Canceled, чтобы Consumer.Consume вышел
	return kafka.Message{}, context.Canceled
}

func (f *fakeReader) Close() error {
	return nil
}

func TestConsumer_Consume_ValidEvent(t *testing.T) {
	// Подготовим валидный Event и запишем его в fakeReader.messages
	evt := Event{
		ScopeID:    "scope-test",
		Type:       EventTypeSearch,
		ProductIDs: []string{"p2", "p4"},
		Timestamp:  time.Now().UTC(),
	}
	payload, _ := json.Marshal(evt)
	msg := kafka.Message{Value: payload}

	// fakeReader вернёт сначала валидное сообщение, потом вернёт ошибку context.Canceled, чтобы прервать цикл.
	fr := &fakeReader{
		messages: []kafka.Message{msg},
		errors:   []error{context.Canceled},
	}

	logger := zapTestLogger(t)
	consumer := &Consumer{
		Reader: fr,
		Logger: logger,
	}

	var called bool
	var received Event

	// handler запишет, что был вызван, и запомнит сам Event
	handler := func(ctx context.Context, e Event) error {
		called = true
		received = e
		return nil
	}

	consumer.Consume(context.Background(), handler)

	// Проверяем, что handler действительно вызвался один раз
	if !called {
		t.Fatal("ожидали, что handler будет вызван для валидного события")
	}
	// Проверим, что пришёл именно тот Event, который мы сериализовали
	if received.ScopeID != evt.ScopeID {
		t.Errorf("ожидали ScopeID=%q, получили=%q", evt.ScopeID, received.ScopeID)
	}
	if received.Type != evt.Type {
		t.Errorf("ожидали Type=%q, получили=%q", evt.Type, received.Type)
	}
	if len(received.ProductIDs) != len(evt.ProductIDs) {
		t.Errorf("ожидали len(ProductIDs)=%d, получили=%d",
			len(evt.ProductIDs), len(received.ProductIDs))
	}
}

func TestConsumer_Consume_InvalidJSON(t *testing.T) {
	// Подготовим сообщение с некорректным JSON
	badMsg := kafka.Message{Value: []byte(`{"scope_id": 123, bad json`)}
	fr := &fakeReader{
		messages: []kafka.Message{badMsg},
		errors:   []error{context.Canceled},
	}

	logger := zapTestLogger(t)
	consumer := &Consumer{
		Reader: fr,
		Logger: logger,
	}

	called := false
	handler := func(ctx context.Context, e Event) error {
		called = true
		return nil
	}

	consumer.Consume(context.Background(), handler)

	// При некорректном JSON handler НЕ должен вызываться
	if called {
		t.Error("ожидали, что handler НЕ будет вызван при некорректном JSON")
	}
}

func TestConsumer_Consume_HandlerError(t *testing.T) {
	// Подготовим валидный Event
	evt := Event{
		ScopeID:    "scope-err",
		Type:       EventTypeView,
		ProductIDs: []string{"p7"},
		Timestamp:  time.Now().UTC(),
	}
	payload, _ := json.Marshal(evt)
	msg := kafka.Message{Value: payload}

	// fakeReader вернёт сообщение, а затем context.Canceled, чтобы выйти из цикла
	fr := &fakeReader{
		messages: []kafka.Message{msg},
		errors:   []error{context.Canceled},
	}

	logger := zapTestLogger(t)
	consumer := &Consumer{
		Reader: fr,
		Logger: logger,
	}

	var called bool
	handler := func(ctx context.Context, e Event) error {
		called = true
		// Возвращаем ошибку, чтобы Consumer залогировал её, но сам не паникующий
		return errors.New("simulated handler failure")
	}

	consumer.Consume(context.Background(), handler)

	// Даже если handler вернул ошибку, Consume не должен была «пропустить» вызов
	if !called {
		t.Error("ожидали, что handler всё же будет вызван, даже если он вернул ошибку")
	}
}

func TestConsumer_Consume_UnknownTypeSkipped(t *testing.T) {
	payload, _ := json.Marshal(Event{ScopeID: "s", Type: "refund"})
	valid, _ := json.Marshal(NewViewEvent("s", "p1"))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr := NewMockReaderInterface(ctrl)
	gomock.InOrder(
		mr.EXPECT().ReadMessage(gomock.Any()).Return(kafka.Message{Value: payload}, nil),
		mr.EXPECT().ReadMessage(gomock.Any()).Return(kafka.Message{Value: valid}, nil),
		mr.EXPECT().ReadMessage(gomock.Any()).Return(kafka.Message{}, context.Canceled),
	)

	consumer := &Consumer{Reader: mr, Logger: zapTestLogger(t)}

	var types []EventType
	consumer.Consume(context.Background(), func(ctx context.Context, e Event) error {
		types = append(types, e.Type)
		return nil
	})

	if len(types) != 1 || types[0] != EventTypeView {
		t.Errorf("ожидали только view событие, получили %v", types)
	}
}

func TestConsumer_Consume_ReadErrorThenCancel(t *testing.T) {
	fr := &fakeReader{errors: []error{errors.New("broker down")}}
	consumer := &Consumer{Reader: fr, Logger: zapTestLogger(t)}

	called := false
	consumer.Consume(context.Background(), func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	if called {
		t.Error("handler не должен вызываться при ошибке чтения")
	}
	if fr.idx != 1 {
		t.Errorf("ожидали одну ошибку чтения перед выходом, idx=%d", fr.idx)
	}
}

func TestConsumer_Consume_ScopeFromMessageKey(t *testing.T) {
	payload, _ := json.Marshal(Event{Type: EventTypeView, ProductIDs: []string{"p1"}})
	fr := &fakeReader{
		messages: []kafka.Message{{Key: []byte("scope-from-key"), Value: payload}},
	}

	consumer := &Consumer{Reader: fr, Logger: zapTestLogger(t)}

	var got Event
	consumer.Consume(context.Background(), func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	if got.ScopeID != "scope-from-key" {
		t.Errorf("expected scope from message key, got %q", got.ScopeID)
	}
	if got.Type != EventTypeView {
		t.Errorf("expected view event, got %q", got.Type)
	}
}
