package elastic

// ElasticDoc - структура документа товара для хранения в ES
type ElasticDoc struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}
