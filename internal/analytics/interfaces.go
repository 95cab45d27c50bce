package analytics

import (
	"context"

	"storefront/internal/kafka"
)

// ProductScore - накопленный вес популярности товара
type ProductScore struct {
	ProductID string `json:"product_id"`
	Weight    int    `json:"weight"`
}

// AnalyticsRepo - интерфейс репозитория популярности товаров и интересов посетителей.
type AnalyticsRepo interface {
	UpdateWeights(ctx context.Context, scopeID string, weights map[string]int) error
	GetTopProducts(ctx context.Context, limit int) ([]ProductScore, error)
	GetScopePreferences(ctx context.Context, scopeID string, limit int) ([]string, error)
}

// AnalyticsService - интерфейс сервиса аналитики.
type AnalyticsService interface {
	ProcessEvent(ctx context.Context, event kafka.Event) error
	GetTopProducts(ctx context.Context, limit int) ([]ProductScore, error)
	GetScopePreferences(ctx context.Context, scopeID string, limit int) ([]string, error)
}
