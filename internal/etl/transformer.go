package etl

import (
	"storefront/internal/types/elastic"
	"storefront/internal/types/product"

	"go.uber.org/zap"
)

type Transformer struct {
	Logger *zap.SugaredLogger
}

func NewTransformer(logger *zap.SugaredLogger) *Transformer {
	return &Transformer{
		Logger: logger,
	}
}

// Transform - переводит карточки каталога в ElasticDoc для хранения в ES
// Принимает массив Summary, возвращает массив ElasticDoc. Товары без id пропускаются.
func (t *Transformer) Transform(input []product.Summary) []elastic.ElasticDoc {
	docs := make([]elastic.ElasticDoc, 0, len(input))
	for _, p := range input {
		if p.ID == "" {
			t.Logger.Warnw("Skipping product without id", "name", p.Name)
			continue
		}

		docs = append(docs, elastic.ElasticDoc{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price.InexactFloat64(),
			Image:       p.Image,
		})
	}

	t.Logger.Infof("Transformed %d docs succesfully", len(docs))

	return docs
}
