package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/contextutil"
	elastic "storefront/internal/elastic_search"
	cartHandlers "storefront/internal/handlers/cart"
	"storefront/internal/kafka"
	esDoc "storefront/internal/types/elastic"
	myErr "storefront/internal/types/errors"
	"storefront/internal/types/product"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxListLimit = 100

var (
	errBadLimit      = errors.New("limit must be a number between 1 and 100")
	errBadOrder      = errors.New("orderDirection must be asc or desc")
	errBadPrice      = errors.New("price bounds must be non-negative numbers")
	errPriceRange    = errors.New("min_price must not exceed max_price")
	errMissingQuery  = errors.New("missing query parameter")
	errMissingProdID = errors.New("missing product id")
)

// ProductHandler - ручки витрины: список, карточка товара и поиск
type ProductHandler struct {
	Logger        *zap.SugaredLogger
	Catalog       catalog.Catalog
	Search        elastic.Searcher
	EventProducer kafka.EventProducer
}

func NewProductHandler(
	l *zap.SugaredLogger,
	c catalog.Catalog,
	s elastic.Searcher,
	ep kafka.EventProducer,
) *ProductHandler {
	return &ProductHandler{
		Logger:        l,
		Catalog:       c,
		Search:        s,
		EventProducer: ep,
	}
}

// List handles GET /api/products?limit=&orderBy=&orderDirection=&q=&min_price=&max_price=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, filter, err := parseListQuery(r)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	list, err := h.Catalog.ListProducts(r.Context(), opts)
	if err != nil {
		myErr.SendErrorTo(w, err, cartHandlers.CatalogErrorStatus(err), h.Logger)
		return
	}

	docs := catalog.Filter(list.Documents, filter)
	total := list.Total
	if len(docs) != len(list.Documents) {
		total = len(docs)
	}

	h.writeJSON(w, http.StatusOK, product.List{Documents: docs, Total: total})
	h.Logger.Infof("listed %d products", len(docs))
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		myErr.SendErrorTo(w, errMissingProdID, http.StatusBadRequest, h.Logger)
		return
	}

	p, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		myErr.SendErrorTo(w, err, cartHandlers.CatalogErrorStatus(err), h.Logger)
		return
	}

	if scope, ok := contextutil.GetScopeFromContext(r.Context()); ok {
		if err := h.EventProducer.SendEvent(r.Context(), kafka.NewViewEvent(scope, p.ID)); err != nil {
			h.Logger.Warnf("failed to send view event: %v", err)
		}
	}

	h.writeJSON(w, http.StatusOK, p)
	h.Logger.Infof("fetched product by id: %s", id)
}

// SearchProducts handles GET /api/products/search?q={query}
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		myErr.SendErrorTo(w, errMissingQuery, http.StatusBadRequest, h.Logger)
		return
	}

	docs, err := h.Search.SearchByName(r.Context(), q)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}
	if docs == nil {
		docs = []esDoc.ElasticDoc{}
	}

	if scope, ok := contextutil.GetScopeFromContext(r.Context()); ok && len(docs) > 0 {
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		if err := h.EventProducer.SendEvent(r.Context(), kafka.NewSearchEvent(scope, ids)); err != nil {
			h.Logger.Warnf("failed to send search event: %v", err)
		}
	}

	h.writeJSON(w, http.StatusOK, docs)
	h.Logger.Infof("searched products with query: %s", q)
}

func parseListQuery(r *http.Request) (product.ListOptions, catalog.FilterOptions, error) {
	q := r.URL.Query()

	var opts product.ListOptions
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			return opts, catalog.FilterOptions{}, errBadLimit
		}
		opts.Limit = limit
	}

	opts.OrderBy = q.Get("orderBy")
	if dir := q.Get("orderDirection"); dir != "" {
		if dir != "asc" && dir != "desc" {
			return opts, catalog.FilterOptions{}, errBadOrder
		}
		opts.OrderDirection = dir
	}

	filter := catalog.FilterOptions{Query: q.Get("q")}

	var err error
	if filter.MinPrice, err = parsePrice(q.Get("min_price")); err != nil {
		return opts, filter, err
	}
	if filter.MaxPrice, err = parsePrice(q.Get("max_price")); err != nil {
		return opts, filter, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return opts, filter, errPriceRange
	}

	return opts.WithDefaults(), filter, nil
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, errBadPrice
	}

	return &d, nil
}

func (h *ProductHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}
