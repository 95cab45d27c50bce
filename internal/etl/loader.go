package etl

import (
	"context"
	"sync"

	"storefront/internal/types/elastic"

	"go.uber.org/zap"
)

// Indexer - то, куда загружаются документы (ElasticService)
type Indexer interface {
	BulkIndex(ctx context.Context, docs []elastic.ElasticDoc) error
}

// ElasticLoader загружает документы в индекс и помнит, что уже загружено,
// чтобы не переиндексировать неизменившиеся товары
type ElasticLoader struct {
	Service Indexer
	Logger  *zap.SugaredLogger

	mu      sync.Mutex
	indexed map[string]elastic.ElasticDoc
}

func NewElasticLoader(service Indexer, logger *zap.SugaredLogger) *ElasticLoader {
	return &ElasticLoader{
		Service: service,
		Logger:  logger,
		indexed: make(map[string]elastic.ElasticDoc),
	}
}

// Load - загружает новые и изменившиеся ElasticDoc в индекс ElasticSearch
// Принимает массив ElasticDoc, возвращает число загруженных документов и error
func (l *ElasticLoader) Load(ctx context.Context, docs []elastic.ElasticDoc) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := make([]elastic.ElasticDoc, 0, len(docs))
	for _, doc := range docs {
		if prev, ok := l.indexed[doc.ID]; ok && prev == doc {
			continue
		}
		changed = append(changed, doc)
	}

	if len(changed) == 0 {
		l.Logger.Infow("No documents to load")
		return 0, nil
	}

	l.Logger.Infow("Loading documents to Elasticsearch", "count", len(changed))
	if err := l.Service.BulkIndex(ctx, changed); err != nil {
		l.Logger.Errorw("Failed to bulk index documents", zap.Error(err))
		return 0, err
	}

	for _, doc := range changed {
		l.indexed[doc.ID] = doc
	}

	l.Logger.Infow("Successfully indexed documents", "count", len(changed))

	return len(changed), nil
}
