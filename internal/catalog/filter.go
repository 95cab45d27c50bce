package catalog

import (
	"strings"

	"storefront/internal/types/product"

	"github.com/shopspring/decimal"
)

// FilterOptions - фильтр витрины. Пустые поля не ограничивают выборку.
type FilterOptions struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (o FilterOptions) empty() bool {
	return strings.TrimSpace(o.Query) == "" && o.MinPrice == nil && o.MaxPrice == nil
}

// Filter оставляет товары, у которых название, описание или категория содержат
// Query без учёта регистра, а цена лежит в [MinPrice, MaxPrice]. Порядок сохраняется.
func Filter(products []product.Summary, opts FilterOptions) []product.Summary {
	if opts.empty() {
		return products
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	out := make([]product.Summary, 0, len(products))

	for _, p := range products {
		if query != "" && !matches(p, query) {
			continue
		}
		if opts.MinPrice != nil && p.Price.LessThan(*opts.MinPrice) {
			continue
		}
		if opts.MaxPrice != nil && p.Price.GreaterThan(*opts.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	return out
}

func matches(p product.Summary, query string) bool {
	for _, field := range []string{p.Name, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
