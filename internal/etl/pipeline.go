package etl

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Pipeline struct {
	extractor   *CatalogExtractor
	transformer *Transformer
	loader      *ElasticLoader
	logger      *zap.SugaredLogger
	interval    time.Duration
}

func NewPipeline(
	extractor *CatalogExtractor,
	transformer *Transformer,
	loader *ElasticLoader,
	logger *zap.SugaredLogger,
	interval time.Duration,
) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		logger:      logger,
		interval:    interval,
	}
}

// Run выполняет первую итерацию сразу, затем по тикеру до отмены ctx
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Infow("ETL pipeline started", "interval", p.interval)

	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.Errorw("Initial ETL iteration failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.logger.Infow("Running ETL pipeline iteration")

			if _, err := p.RunOnce(ctx); err != nil {
				p.logger.Errorw("ETL iteration failed", zap.Error(err))
			}
		}
	}
}

// RunOnce - одна итерация extract -> transform -> load. Возвращает число загруженных документов.
func (p *Pipeline) RunOnce(ctx context.Context) (int, error) {
	// EXTRACT
	products, err := p.extractor.Extract(ctx)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		p.logger.Infow("No products to process")

		return 0, nil
	}

	// TRANSFORM
	docs := p.transformer.Transform(products)

	// LOAD
	loaded, err := p.loader.Load(ctx, docs)
	if err != nil {
		return 0, err
	}

	p.logger.Infof("ETL pipeline completed, successfully loaded %d docs", loaded)

	return loaded, nil
}
