package analytics

import (
	"context"

	"storefront/internal/kafka"

	"go.uber.org/zap"
)

const (
	weightSearch    = 1
	weightView      = 2
	weightAddToCart = 2
	weightPurchase  = 3
)

type Service struct {
	repo   AnalyticsRepo
	logger *zap.SugaredLogger
}

func NewService(repo AnalyticsRepo, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, event kafka.Event) error {
	weights := make(map[string]int)
	switch event.Type {
	case kafka.EventTypeSearch:
		for _, id := range event.ProductIDs {
			weights[id] += weightSearch
		}
	case kafka.EventTypeView:
		if len(event.ProductIDs) > 0 {
			weights[event.ProductIDs[0]] += weightView
		}
	case kafka.EventTypeAddToCart:
		for _, id := range event.ProductIDs {
			weights[id] += weightAddToCart
		}
	case kafka.EventTypePurchase:
		for _, id := range event.ProductIDs {
			weights[id] += weightPurchase
		}
	}
	delete(weights, "")

	if len(weights) == 0 {
		return nil
	}

	return s.repo.UpdateWeights(ctx, event.ScopeID, weights)
}

func (s *Service) GetTopProducts(ctx context.Context, limit int) ([]ProductScore, error) {
	return s.repo.GetTopProducts(ctx, limit)
}

func (s *Service) GetScopePreferences(ctx context.Context, scopeID string, limit int) ([]string, error) {
	return s.repo.GetScopePreferences(ctx, scopeID, limit)
}
