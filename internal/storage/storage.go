package storage

import "context"

// Slot - долговременное хранилище ключ-значение, разделённое по scope посетителя.
// Значение в слоте всегда перезаписывается целиком.
type Slot interface {
	// Get возвращает значение слота или errors.ErrNotFound, если его нет
	Get(ctx context.Context, scope, key string) (string, error)
	// Set перезаписывает значение слота
	Set(ctx context.Context, scope, key, value string) error
}

// Binding - один конкретный слот (scope, key)
type Binding struct {
	Slot  Slot
	Scope string
	Key   string
}

// Bind привязывает слот к scope и ключу
func Bind(slot Slot, scope, key string) *Binding {
	return &Binding{
		Slot:  slot,
		Scope: scope,
		Key:   key,
	}
}

func (b *Binding) Read(ctx context.Context) (string, error) {
	return b.Slot.Get(ctx, b.Scope, b.Key)
}

func (b *Binding) Write(ctx context.Context, value string) error {
	return b.Slot.Set(ctx, b.Scope, b.Key, value)
}
