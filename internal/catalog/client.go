// Package catalog is the HTTP client of the remote product catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sony/gobreaker/v2"
)

const maxBodyBytes = 4 << 20

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

type Config struct {
	BaseURL string
	Timeout time.Duration

	// Breaker trips once MinRequests were seen in an Interval and the share
	// of failures reaches FailureRatio. It stays open for OpenTimeout.
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerOpenTimeout  time.Duration
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:             baseURL,
		Timeout:             10 * time.Second,
		BreakerMaxRequests:  1,
		BreakerInterval:     60 * time.Second,
		BreakerOpenTimeout:  30 * time.Second,
		BreakerFailureRatio: 0.5,
		BreakerMinRequests:  5,
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger

	now func() time.Time
}

var _ port.ProductCatalog = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("catalog base url[%s] must be absolute http(s)", cfg.BaseURL)
	}

	const breakerName = "catalog"

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// a caller giving up says nothing about the catalog
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	breakerState.WithLabelValues(breakerName).Set(0)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// ListProducts returns every valid product. Invalid records are dropped and
// logged rather than failing the listing.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.call(ctx, opList, http.MethodGet, "/products", nil, nil)
	if err != nil {
		return nil, err
	}

	records, err := SplitList(body)
	if err != nil {
		requestsTotal.WithLabelValues(opList, outcomeInvalid).Inc()
		return nil, fmt.Errorf("SplitList: %w", err)
	}
	requestsTotal.WithLabelValues(opList, outcomeOK).Inc()

	products := make([]domain.Product, 0, len(records))
	for i, raw := range records {
		p, err := ParseProduct(raw)
		if err != nil {
			droppedRecordsTotal.Inc()
			c.logger.WarnContext(ctx, "dropping catalog record",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id < 0 {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrInvalidProductID, id)
	}

	body, err := c.call(ctx, opGet, http.MethodGet, productPath(id), nil, nil)
	if err != nil {
		return domain.Product{}, err
	}

	return c.parseOne(opGet, body)
}

// CreateProduct fills catalog defaults into input and creates the product.
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	input = withDefaults(input, c.now().UnixMilli())

	body, err := c.call(ctx, opCreate, http.MethodPost, "/products", input, nil)
	if err != nil {
		return domain.Product{}, err
	}

	return c.parseOne(opCreate, body)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	if id < 0 {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrInvalidProductID, id)
	}

	body, err := c.call(ctx, opUpdate, http.MethodPut, productPath(id), patch, nil)
	if err != nil {
		return domain.Product{}, err
	}

	return c.parseOne(opUpdate, body)
}

// DeleteProduct validates id before any request. Only 200 and 204 count as
// success.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		requestsTotal.WithLabelValues(opDelete, outcomeInvalid).Inc()
		return fmt.Errorf("%w: %d", ErrInvalidProductID, id)
	}

	if _, err := c.call(ctx, opDelete, http.MethodDelete, productPath(id), nil,
		[]int{http.StatusOK, http.StatusNoContent}); err != nil {
		return err
	}

	requestsTotal.WithLabelValues(opDelete, outcomeOK).Inc()
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) parseOne(op string, body []byte) (domain.Product, error) {
	p, err := ParseProduct(body)
	if err != nil {
		requestsTotal.WithLabelValues(op, outcomeInvalid).Inc()
		return domain.Product{}, fmt.Errorf("ParseProduct: %w", err)
	}

	requestsTotal.WithLabelValues(op, outcomeOK).Inc()
	return p, nil
}

// call performs one request through the breaker and returns the body of an
// accepted response. A nil accept list accepts any 2xx status. Failures are
// counted here, successes by the caller once the body was understood.
func (c *Client) call(ctx context.Context, op, method, path string, payload any, accept []int) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		requestsTotal.WithLabelValues(op, outcomeInvalid).Inc()
		return nil, fmt.Errorf("catalog %s: set up request: %w", op, err)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		// 5xx counts against the breaker
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, statusError(op, resp)
		}
		return resp, nil
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			requestsTotal.WithLabelValues(op, outcomeRejected).Inc()
			return nil, statusErr
		}
		requestsTotal.WithLabelValues(op, outcomeNoResponse).Inc()
		return nil, fmt.Errorf("catalog %s: %w: %w", op, ErrNoResponse, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !accepted(resp.StatusCode, accept) {
		requestsTotal.WithLabelValues(op, outcomeRejected).Inc()
		return nil, statusError(op, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		requestsTotal.WithLabelValues(op, outcomeNoResponse).Inc()
		return nil, fmt.Errorf("catalog %s: %w: read body: %w", op, ErrNoResponse, err)
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func statusError(op string, resp *http.Response) *StatusError {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func accepted(status int, accept []int) bool {
	if accept == nil {
		return status >= 200 && status < 300
	}
	return slices.Contains(accept, status)
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}
