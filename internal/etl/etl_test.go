package etl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/etl"
	"storefront/internal/mocks"
	"storefront/internal/types/elastic"
	"storefront/internal/types/product"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeIndexer struct {
	calls [][]elastic.ElasticDoc
	err   error
}

func (f *fakeIndexer) BulkIndex(ctx context.Context, docs []elastic.ElasticDoc) error {
	f.calls = append(f.calls, docs)
	return f.err
}

func summary(id, name, price string) product.Summary {
	return product.Summary{ID: id, Name: name, Price: decimal.RequireFromString(price), Image: id + ".png"}
}

func TestCatalogExtractor_Extract(t *testing.T) {
	logger := zap.NewNop().Sugar()

	tests := []struct {
		name          string
		setup         func(m *mocks.MockCatalog)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success with two products",
			setup: func(m *mocks.MockCatalog) {
				m.EXPECT().
					ListProducts(gomock.Any(), product.ListOptions{Limit: 100, OrderBy: "$createdAt", OrderDirection: "asc"}).
					Return(&product.List{Documents: []product.Summary{summary("p1", "A", "1"), summary("p2", "B", "2")}, Total: 2}, nil)
			},
			expectedCount: 2,
		},
		{
			name: "catalog error",
			setup: func(m *mocks.MockCatalog) {
				m.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(nil, errors.New("catalog down"))
			},
			expectedError: true,
		},
		{
			name: "more products than one batch",
			setup: func(m *mocks.MockCatalog) {
				m.EXPECT().ListProducts(gomock.Any(), gomock.Any()).
					Return(&product.List{Documents: []product.Summary{summary("p1", "A", "1")}, Total: 500}, nil)
			},
			expectedCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks.NewMockCatalog(ctrl)
			tt.setup(m)

			extractor := etl.NewCatalogExtractor(m, logger, 100)
			results, err := extractor.Extract(context.Background())

			if tt.expectedError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if len(results) != tt.expectedCount {
				t.Errorf("expected %d results, got %d", tt.expectedCount, len(results))
			}
		})
	}
}

func TestTransformer_Transform(t *testing.T) {
	logger := zap.NewNop().Sugar()

	tests := []struct {
		name   string
		input  []product.Summary
		expect []elastic.ElasticDoc
	}{
		{
			name:   "empty input",
			input:  []product.Summary{},
			expect: []elastic.ElasticDoc{},
		},
		{
			name: "single product",
			input: []product.Summary{
				{
					ID:          "1",
					Name:        "GPU",
					Description: "Desc",
					Category:    "hardware",
					Price:       decimal.RequireFromString("29.99"),
					Image:       "gpu.png",
				},
			},
			expect: []elastic.ElasticDoc{
				{
					ID:          "1",
					Name:        "GPU",
					Description: "Desc",
					Category:    "hardware",
					Price:       29.99,
					Image:       "gpu.png",
				},
			},
		},
		{
			name: "product without id is skipped",
			input: []product.Summary{
				{Name: "ghost"},
				{ID: "2", Name: "A2", Price: decimal.NewFromInt(5)},
			},
			expect: []elastic.ElasticDoc{
				{ID: "2", Name: "A2", Price: 5},
			},
		},
	}

	transformer := etl.NewTransformer(logger)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transformer.Transform(tt.input)
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %d results, got %d", len(tt.expect), len(got))
			}

			for i := range got {
				if got[i] != tt.expect[i] {
					t.Errorf("expected %v, got %v", tt.expect[i], got[i])
				}
			}
		})
	}
}

func TestElasticLoader_SkipsUnchanged(t *testing.T) {
	idx := &fakeIndexer{}
	loader := etl.NewElasticLoader(idx, zap.NewNop().Sugar())
	ctx := context.Background()

	docs := []elastic.ElasticDoc{{ID: "1", Name: "A", Price: 1}, {ID: "2", Name: "B", Price: 2}}

	n, err := loader.Load(ctx, docs)
	if err != nil || n != 2 {
		t.Fatalf("first load: n=%d err=%v", n, err)
	}

	n, err = loader.Load(ctx, docs)
	if err != nil || n != 0 {
		t.Fatalf("second load should skip unchanged docs: n=%d err=%v", n, err)
	}

	docs[1].Price = 3
	n, err = loader.Load(ctx, docs)
	if err != nil || n != 1 {
		t.Fatalf("third load should index only the changed doc: n=%d err=%v", n, err)
	}

	if len(idx.calls) != 2 {
		t.Fatalf("expected 2 bulk calls, got %d", len(idx.calls))
	}
	if idx.calls[1][0].ID != "2" {
		t.Errorf("expected changed doc 2 to be reindexed, got %s", idx.calls[1][0].ID)
	}
}

func TestElasticLoader_FailureIsRetried(t *testing.T) {
	idx := &fakeIndexer{err: errors.New("es down")}
	loader := etl.NewElasticLoader(idx, zap.NewNop().Sugar())
	docs := []elastic.ElasticDoc{{ID: "1", Name: "A"}}

	if _, err := loader.Load(context.Background(), docs); err == nil {
		t.Fatal("expected error")
	}

	idx.err = nil
	n, err := loader.Load(context.Background(), docs)
	if err != nil || n != 1 {
		t.Fatalf("failed docs must be loaded again: n=%d err=%v", n, err)
	}
}

func TestPipeline_RunOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := zap.NewNop().Sugar()
	m := mocks.NewMockCatalog(ctrl)
	m.EXPECT().ListProducts(gomock.Any(), gomock.Any()).
		Return(&product.List{Documents: []product.Summary{summary("p1", "GPU", "29.99"), summary("p2", "Mouse", "5")}, Total: 2}, nil).
		Times(2)

	idx := &fakeIndexer{}
	p := etl.NewPipeline(
		etl.NewCatalogExtractor(m, logger, 0),
		etl.NewTransformer(logger),
		etl.NewElasticLoader(idx, logger),
		logger,
		0,
	)

	n, err := p.RunOnce(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("first run: n=%d err=%v", n, err)
	}

	n, err = p.RunOnce(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second run: n=%d err=%v", n, err)
	}
}

func TestPipeline_RunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := zap.NewNop().Sugar()
	m := mocks.NewMockCatalog(ctrl)
	m.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(&product.List{}, nil).AnyTimes()

	p := etl.NewPipeline(
		etl.NewCatalogExtractor(m, logger, 0),
		etl.NewTransformer(logger),
		etl.NewElasticLoader(&fakeIndexer{}, logger),
		logger,
		time.Hour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after cancel")
	}
}
