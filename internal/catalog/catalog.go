package catalog

import (
	"context"

	"storefront/internal/types/product"
)

// Catalog - удалённый сервис каталога товаров
//
//go:generate mockgen -source=catalog.go -destination=../mocks/mock_catalog.go -package=mocks
type Catalog interface {
	// ListProducts возвращает список товаров с сортировкой и лимитом
	ListProducts(ctx context.Context, opts product.ListOptions) (*product.List, error)
	// GetProduct возвращает товар по id или errors.ErrNotFound
	GetProduct(ctx context.Context, id string) (*product.Detail, error)
}
