package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/kafka"
	"storefront/internal/middleware"
	"storefront/internal/mocks"
	"storefront/internal/session"
	esDoc "storefront/internal/types/elastic"
	myErr "storefront/internal/types/errors"
	"storefront/internal/types/product"

	"github.com/go-playground/assert"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productMocks struct {
	catalog  *mocks.MockCatalog
	search   *mocks.MockSearcher
	producer *mocks.MockEventProducer
}

func setupProductHandler(t *testing.T) (*ProductHandler, productMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := productMocks{
		catalog:  mocks.NewMockCatalog(ctrl),
		search:   mocks.NewMockSearcher(ctrl),
		producer: mocks.NewMockEventProducer(ctrl),
	}

	return NewProductHandler(zap.NewNop().Sugar(), m.catalog, m.search, m.producer), m
}

func withScope(r *http.Request, scope string) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), &session.Session{ID: scope}))
}

func sampleProducts() []product.Summary {
	return []product.Summary{
		{ID: "p1", Name: "Red Mug", Price: decimal.RequireFromString("9.99"), Category: "kitchen"},
		{ID: "p2", Name: "Blue Lamp", Price: decimal.RequireFromString("45"), Category: "home"},
		{ID: "p3", Name: "Red Lamp", Price: decimal.RequireFromString("60.5"), Category: "home"},
	}
}

func TestProductHandler_List(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		mockBehavior func(m productMocks)
		expectedCode int
		expectedIDs  []string
		expectedTot  int
	}{
		{
			name:  "defaults",
			query: "",
			mockBehavior: func(m productMocks) {
				m.catalog.EXPECT().ListProducts(gomock.Any(), product.ListOptions{
					Limit: product.DefaultLimit, OrderBy: "price", OrderDirection: "asc",
				}).Return(&product.List{Documents: sampleProducts(), Total: 42}, nil)
			},
			expectedCode: http.StatusOK,
			expectedIDs:  []string{"p1", "p2", "p3"},
			expectedTot:  42,
		},
		{
			name:  "explicit ordering",
			query: "?limit=10&orderBy=name&orderDirection=desc",
			mockBehavior: func(m productMocks) {
				m.catalog.EXPECT().ListProducts(gomock.Any(), product.ListOptions{
					Limit: 10, OrderBy: "name", OrderDirection: "desc",
				}).Return(&product.List{Documents: sampleProducts(), Total: 3}, nil)
			},
			expectedCode: http.StatusOK,
			expectedIDs:  []string{"p1", "p2", "p3"},
			expectedTot:  3,
		},
		{
			name:  "text and price filter",
			query: "?q=red&min_price=10&max_price=100",
			mockBehavior: func(m productMocks) {
				m.catalog.EXPECT().ListProducts(gomock.Any(), gomock.Any()).
					Return(&product.List{Documents: sampleProducts(), Total: 3}, nil)
			},
			expectedCode: http.StatusOK,
			expectedIDs:  []string{"p3"},
			expectedTot:  1,
		},
		{
			name:         "bad limit",
			query:        "?limit=abc",
			mockBehavior: func(m productMocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "limit too large",
			query:        "?limit=1000",
			mockBehavior: func(m productMocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "bad direction",
			query:        "?orderDirection=up",
			mockBehavior: func(m productMocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "negative price",
			query:        "?min_price=-1",
			mockBehavior: func(m productMocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "inverted range",
			query:        "?min_price=50&max_price=10",
			mockBehavior: func(m productMocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:  "catalog down",
			query: "",
			mockBehavior: func(m productMocks) {
				m.catalog.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(nil, myErr.ErrCatalogUnavailable)
			},
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, m := setupProductHandler(t)
			tc.mockBehavior(m)

			w := httptest.NewRecorder()
			h.List(w, httptest.NewRequest(http.MethodGet, "/api/products"+tc.query, nil))

			assert.Equal(t, tc.expectedCode, w.Code)
			if tc.expectedCode != http.StatusOK {
				return
			}

			var list product.List
			if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
				t.Fatalf("decode: %v", err)
			}
			ids := make([]string, 0, len(list.Documents))
			for _, p := range list.Documents {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
			assert.Equal(t, tc.expectedTot, list.Total)
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	detail := &product.Detail{Summary: sampleProducts()[0]}

	t.Run("anonymous view sends no event", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.catalog.EXPECT().GetProduct(gomock.Any(), "p1").Return(detail, nil)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/products/p1", nil), map[string]string{"id": "p1"})
		w := httptest.NewRecorder()
		h.Get(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got product.Detail
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		assert.Equal(t, "Red Mug", got.Name)
	})

	t.Run("view with scope", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.catalog.EXPECT().GetProduct(gomock.Any(), "p1").Return(detail, nil)
		m.producer.EXPECT().SendEvent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e kafka.Event) error {
				assert.Equal(t, kafka.EventTypeView, e.Type)
				assert.Equal(t, "scope-7", e.ScopeID)
				assert.Equal(t, []string{"p1"}, e.ProductIDs)
				return errors.New("broker down")
			})

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/products/p1", nil), map[string]string{"id": "p1"})
		w := httptest.NewRecorder()
		h.Get(w, withScope(req, "scope-7"))

		// сбой брокера не ломает ответ
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.catalog.EXPECT().GetProduct(gomock.Any(), "nope").Return(nil, myErr.ErrNotFound)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/products/nope", nil), map[string]string{"id": "nope"})
		w := httptest.NewRecorder()
		h.Get(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "{\"message\":\"record not found\"}\n", w.Body.String())
	})

	t.Run("missing id", func(t *testing.T) {
		h, _ := setupProductHandler(t)

		w := httptest.NewRecorder()
		h.Get(w, httptest.NewRequest(http.MethodGet, "/api/products/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_Search(t *testing.T) {
	docs := []esDoc.ElasticDoc{
		{ID: "p1", Name: "Red Mug", Price: 9.99},
		{ID: "p3", Name: "Red Lamp", Price: 60.5},
	}

	t.Run("missing query", func(t *testing.T) {
		h, _ := setupProductHandler(t)

		w := httptest.NewRecorder()
		h.SearchProducts(w, httptest.NewRequest(http.MethodGet, "/api/products/search", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "{\"message\":\"missing query parameter\"}\n", w.Body.String())
	})

	t.Run("results with scope emit search event", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.search.EXPECT().SearchByName(gomock.Any(), "red").Return(docs, nil)
		m.producer.EXPECT().SendEvent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e kafka.Event) error {
				assert.Equal(t, kafka.EventTypeSearch, e.Type)
				assert.Equal(t, []string{"p1", "p3"}, e.ProductIDs)
				return nil
			})

		w := httptest.NewRecorder()
		h.SearchProducts(w, withScope(httptest.NewRequest(http.MethodGet, "/api/products/search?q=red", nil), "scope-1"))

		assert.Equal(t, http.StatusOK, w.Code)

		var got []esDoc.ElasticDoc
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		assert.Equal(t, 2, len(got))
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.search.EXPECT().SearchByName(gomock.Any(), "zzz").Return(nil, nil)

		w := httptest.NewRecorder()
		h.SearchProducts(w, withScope(httptest.NewRequest(http.MethodGet, "/api/products/search?q=zzz", nil), "scope-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("search backend error", func(t *testing.T) {
		h, m := setupProductHandler(t)
		m.search.EXPECT().SearchByName(gomock.Any(), "red").Return(nil, myErr.ErrSearch)

		w := httptest.NewRecorder()
		h.SearchProducts(w, httptest.NewRequest(http.MethodGet, "/api/products/search?q=red", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
