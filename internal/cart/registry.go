package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StorageFactory возвращает слот для корзины конкретного посетителя
type StorageFactory func(scope string) SnapshotStorage

type entry struct {
	store    *Store
	once     sync.Once
	lastUsed time.Time
	inUse    int
}

// Registry хранит по одной корзине на посетителя.
// Корзина создаётся и восстанавливается из слота при первом обращении.
type Registry struct {
	Logger       *zap.SugaredLogger
	storage      StorageFactory
	writeTimeout time.Duration
	now          func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
}

func NewRegistry(storage StorageFactory, logger *zap.SugaredLogger, writeTimeout time.Duration) *Registry {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Registry{
		Logger:       logger,
		storage:      storage,
		writeTimeout: writeTimeout,
		now:          time.Now,
		stores:       make(map[string]*entry),
	}
}

// Acquire возвращает корзину посетителя и функцию release.
// Пока корзина не отпущена, Sweep её не выгружает.
// Если слот не прочитался, корзина возвращается не готовой и не кешируется,
// следующий вызов попробует прочитать слот заново.
func (r *Registry) Acquire(ctx context.Context, scope string) (CartStore, func()) {
	r.mu.Lock()
	e, ok := r.stores[scope]
	if !ok {
		e = &entry{store: NewStore(r.Logger.With("scope", scope))}
		r.stores[scope] = e
		cartActiveStores.Set(float64(len(r.stores)))
	}
	e.inUse++
	e.lastUsed = r.now()
	r.mu.Unlock()

	e.once.Do(func() {
		storage := r.storage(scope)
		e.store.Subscribe(NewPersister(storage, e.store.Logger, r.writeTimeout))
		e.store.Subscribe(MetricsListener)

		// загрузка не должна зависеть от отмены запроса, который её начал
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
		defer cancel()
		e.store.Load(loadCtx, storage)
	})

	if !e.store.Ready() {
		r.mu.Lock()
		if r.stores[scope] == e {
			delete(r.stores, scope)
			cartActiveStores.Set(float64(len(r.stores)))
		}
		r.mu.Unlock()
	}

	var released bool
	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if released {
			return
		}
		released = true
		e.inUse--
		e.lastUsed = r.now()
	}

	return e.store, release
}

// Store возвращает корзину посетителя без удержания
func (r *Registry) Store(ctx context.Context, scope string) CartStore {
	s, release := r.Acquire(ctx, scope)
	release()

	return s
}

// Forget выгружает корзину посетителя из памяти. Сохранённый снимок остаётся в слоте.
func (r *Registry) Forget(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, scope)
	cartActiveStores.Set(float64(len(r.stores)))
}

// Sweep выгружает корзины, к которым не обращались дольше idle.
// Корзины, которые сейчас удерживаются через Acquire, не трогает.
// Возвращает количество выгруженных корзин.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-idle)
	var n int
	for scope, e := range r.stores {
		if e.inUse == 0 && e.lastUsed.Before(deadline) {
			delete(r.stores, scope)
			n++
		}
	}
	cartActiveStores.Set(float64(len(r.stores)))

	return n
}

// RunSweeper периодически вызывает Sweep до отмены контекста
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.Logger.Infow("evicted idle carts", "count", n)
			}
		}
	}
}

// Len - количество корзин в памяти
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.stores)
}
