package product

import "github.com/shopspring/decimal"

const (
	DefaultLimit          = 50
	DefaultOrderBy        = "price"
	DefaultOrderDirection = "asc"
)

// Summary - карточка товара в каталоге (документ из удалённой базы)
type Summary struct {
	ID          string          `json:"$id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// Detail - полная информация о товаре для страницы товара
type Detail struct {
	Summary
	CreatedAt string `json:"$createdAt,omitempty"`
	UpdatedAt string `json:"$updatedAt,omitempty"`
}

// List - ответ каталога на запрос списка товаров
type List struct {
	Documents []Summary `json:"documents"`
	Total     int       `json:"total"`
}

// ListOptions - параметры выборки списка товаров
type ListOptions struct {
	Limit          int
	OrderBy        string
	OrderDirection string
}

// WithDefaults подставляет значения по умолчанию для незаполненных полей
func (o ListOptions) WithDefaults() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.OrderBy == "" {
		o.OrderBy = DefaultOrderBy
	}
	if o.OrderDirection != "asc" && o.OrderDirection != "desc" {
		o.OrderDirection = DefaultOrderDirection
	}

	return o
}
