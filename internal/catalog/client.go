package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/types/product"
	myErr "storefront/internal/types/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxBodySize = 4 << 20

// errRequestCanceled - запрос прерван вызывающей стороной, каталог тут ни при чём
var errRequestCanceled = errors.New("catalog request canceled")

var breakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "catalog_circuit_breaker_state",
		Help: "Current state of the catalog circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(breakerState)
}

// BreakerConfig - настройки circuit breaker для запросов в каталог
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	FailureRatio float64       `yaml:"failure_ratio"`
	MinRequests  uint32        `yaml:"min_requests"`
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type response struct {
	status int
	body   []byte
}

// Client ходит в каталог по HTTP
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
	breaker    *gobreaker.CircuitBreaker[*response]
}

func NewClient(baseURL string, timeout time.Duration, cfg BreakerConfig, logger *zap.SugaredLogger) *Client {
	const name = "catalog"

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// отменённые клиентом запросы не считаются отказом каталога
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRequestCanceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("catalog circuit breaker state changed", "from", from.String(), "to", to.String())
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	breakerState.WithLabelValues(name).Set(0)

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
		breaker:    gobreaker.NewCircuitBreaker[*response](settings),
	}
}

// ListProducts - GET {base}/products?limit=&orderBy=&orderDirection=
func (c *Client) ListProducts(ctx context.Context, opts product.ListOptions) (*product.List, error) {
	opts = opts.WithDefaults()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("orderBy", opts.OrderBy)
	q.Set("orderDirection", opts.OrderDirection)

	resp, err := c.get(ctx, c.BaseURL+"/products?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, responseError(resp)
	}

	var list product.List
	if err := json.Unmarshal(resp.body, &list); err != nil {
		c.Logger.Errorw("failed to decode product list", "err", err)
		return nil, fmt.Errorf("%w: decode product list: %v", myErr.ErrCatalogResponse, err)
	}
	if list.Documents == nil {
		list.Documents = []product.Summary{}
	}

	return &list, nil
}

// GetProduct - GET {base}/products/{id}
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Detail, error) {
	resp, err := c.get(ctx, c.BaseURL+"/products/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, myErr.ErrNotFound
	default:
		return nil, responseError(resp)
	}

	var d product.Detail
	if err := json.Unmarshal(resp.body, &d); err != nil {
		c.Logger.Errorw("failed to decode product", "id", id, "err", err)
		return nil, fmt.Errorf("%w: decode product: %v", myErr.ErrCatalogResponse, err)
	}

	return &d, nil
}

// get выполняет запрос через circuit breaker. Ответы 5xx считаются отказом каталога.
func (c *Client) get(ctx context.Context, target string) (*response, error) {
	resp, err := c.breaker.Execute(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, callerError(ctx, err)
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
		if err != nil {
			return nil, callerError(ctx, err)
		}

		out := &response{status: res.StatusCode, body: body}
		if res.StatusCode >= http.StatusInternalServerError {
			return out, responseError(out)
		}

		return out, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, myErr.ErrCatalogUnavailable
		}
		if errors.Is(err, errRequestCanceled) {
			c.Logger.Debugw("catalog request canceled", "url", target, "err", err)
			return nil, err
		}

		c.Logger.Warnw("catalog request failed", "url", target, "err", err)
		if errors.Is(err, myErr.ErrCatalogResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", myErr.ErrCatalogUnavailable, err)
	}

	return resp, nil
}

// callerError помечает ошибку, вызванную отменой контекста запроса
func callerError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", errRequestCanceled, ctxErr)
	}
	return err
}

func responseError(resp *response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.status)
	}

	return fmt.Errorf("%w: %d %s", myErr.ErrCatalogResponse, resp.status, body.Message)
}
