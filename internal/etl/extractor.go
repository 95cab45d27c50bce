package etl

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/types/product"

	"go.uber.org/zap"
)

const defaultBatchSize = 500

type CatalogExtractor struct {
	Catalog   catalog.Catalog
	Logger    *zap.SugaredLogger
	BatchSize int
}

func NewCatalogExtractor(c catalog.Catalog, logger *zap.SugaredLogger, batchSize int) *CatalogExtractor {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &CatalogExtractor{
		Catalog:   c,
		Logger:    logger,
		BatchSize: batchSize,
	}
}

// Extract - достает товары из каталога
// Возвращает массив карточек товаров и error
func (e *CatalogExtractor) Extract(ctx context.Context) ([]product.Summary, error) {
	list, err := e.Catalog.ListProducts(ctx, product.ListOptions{
		Limit:          e.BatchSize,
		OrderBy:        "$createdAt",
		OrderDirection: "asc",
	})
	if err != nil {
		e.Logger.Errorw("Failed to list products from catalog", zap.Error(err))

		return nil, err
	}

	if list.Total > len(list.Documents) {
		e.Logger.Warnw("Catalog has more products than one batch", "total", list.Total, "batch", len(list.Documents))
	}

	return list.Documents, nil
}
