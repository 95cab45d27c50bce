package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultWriteTimeout = 2 * time.Second

// Persister сохраняет снимок корзины в слот после каждого изменения.
// Ошибки записи только логируются.
type Persister struct {
	Storage      SnapshotStorage
	Logger       *zap.SugaredLogger
	WriteTimeout time.Duration
}

func NewPersister(storage SnapshotStorage, logger *zap.SugaredLogger, writeTimeout time.Duration) *Persister {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Persister{
		Storage:      storage,
		Logger:       logger,
		WriteTimeout: writeTimeout,
	}
}

func (p *Persister) OnChange(c Change) {
	snapshot, err := EncodeSnapshot(c.State.Lines)
	if err != nil {
		p.Logger.Errorw("failed to encode cart snapshot", "op", c.Op, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.WriteTimeout)
	defer cancel()

	if err := p.Storage.Write(ctx, snapshot); err != nil {
		p.Logger.Errorw("failed to persist cart snapshot", "op", c.Op, "err", err)
	}
}
