package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	handler "github.com/nikolayk812/storefront/internal/handler/http"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products []domain.Product
	nextID   int64
	err      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		nextID: 100,
		products: []domain.Product{
			{ID: 1, Title: "Red Lipstick", Description: "matte finish", Category: "beauty", Price: decimal.RequireFromString("10.00"), Rating: 4.1},
			{ID: 2, Title: "Oak Table", Description: "solid wood", Category: "furniture", Price: decimal.RequireFromString("250.00"), Rating: 4.8},
			{ID: 3, Title: "Face Cream", Description: "night cream", Category: "beauty", Price: decimal.RequireFromString("5.50"), Rating: 3.9},
		},
	}
}

func (f *fakeCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.products), nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return domain.Product{}, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &catalog.StatusError{Op: "get", StatusCode: http.StatusNotFound}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, input domain.ProductInput) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	p := domain.Product{
		ID:       f.nextID,
		Title:    input.Title,
		Category: input.Category,
		Price:    decimal.NewFromFloat(input.Price),
	}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, p := range f.products {
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Price != nil {
			p.Price = decimal.NewFromFloat(*patch.Price)
		}
		f.products[i] = p
		return p, nil
	}
	return domain.Product{}, &catalog.StatusError{Op: "update", StatusCode: http.StatusNotFound}
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id int64) error {
	if id <= 0 {
		return catalog.ErrInvalidProductID
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.products = slices.DeleteFunc(f.products, func(p domain.Product) bool { return p.ID == id })
	return nil
}

func (f *fakeCatalog) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type envelope[T any] struct {
	Data  T         `json:"data"`
	Error *apiError `json:"error"`
}

type cartBody struct {
	SessionID string `json:"session_id"`
	Currency  string `json:"currency"`
	Lines     []struct {
		ProductID int64  `json:"product_id"`
		Title     string `json:"title"`
		Quantity  int    `json:"quantity"`
		Price     string `json:"price"`
		Subtotal  string `json:"subtotal"`
	} `json:"lines"`
	ItemCount      int    `json:"item_count"`
	Total          string `json:"total"`
	TotalFormatted string `json:"total_formatted"`
}

func newTestRouter(t *testing.T) (http.Handler, *fakeCatalog) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fc := newFakeCatalog()
	carts := cart.NewService(fc, nil, currency.USD, logger)

	return handler.NewRouter(handler.Deps{
		Catalog:  fc,
		Carts:    carts,
		Checkout: checkout.NewService(carts, logger),
		Logger:   logger,
	}), fc
}

func do(t *testing.T, h http.Handler, method, target, body, session string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(handler.SessionHeader, session)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func titles(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestProducts_List(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{
			name:   "catalog order",
			target: "/api/v1/products",
			want:   []string{"Red Lipstick", "Oak Table", "Face Cream"},
		},
		{
			name:   "search over title and description",
			target: "/api/v1/products?q=CREAM",
			want:   []string{"Face Cream"},
		},
		{
			name:   "category and price low",
			target: "/api/v1/products?category=Beauty&sort=price-low",
			want:   []string{"Face Cream", "Red Lipstick"},
		},
		{
			name:   "all categories by rating",
			target: "/api/v1/products?category=all&sort=rating",
			want:   []string{"Oak Table", "Red Lipstick", "Face Cream"},
		},
		{
			name:   "no match",
			target: "/api/v1/products?q=sofa",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "", "")
			require.Equal(t, http.StatusOK, rec.Code)

			env := decode[[]domain.Product](t, rec)
			assert.Equal(t, tt.want, titles(env.Data))
		})
	}
}

func TestProducts_InvalidSort(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/products?sort=newest", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode[any](t, rec).Error.Code)
}

func TestProducts_Get(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/products/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Oak Table", decode[domain.Product](t, rec).Data.Title)

	rec = do(t, h, http.MethodGet, "/api/v1/products/42", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, rec).Error.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/products/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode[any](t, rec).Error.Code)
}

func TestProducts_FeaturedAndCategories(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/products/featured?limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Oak Table", "Red Lipstick"}, titles(decode[[]domain.Product](t, rec).Data))

	rec = do(t, h, http.MethodGet, "/api/v1/products/featured?limit=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	type category struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	assert.Equal(t, []category{
		{Name: "all", Count: 3},
		{Name: "beauty", Count: 2},
		{Name: "furniture", Count: 1},
	}, decode[[]category](t, rec).Data)
}

func TestCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "unreachable",
			err:      catalog.ErrNoResponse,
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "CATALOG_UNAVAILABLE",
		},
		{
			name:     "rejected",
			err:      &catalog.StatusError{Op: "list", StatusCode: http.StatusInternalServerError},
			wantCode: http.StatusBadGateway,
			wantErr:  "CATALOG_REJECTED",
		},
		{
			name:     "unexpected",
			err:      io.ErrUnexpectedEOF,
			wantCode: http.StatusInternalServerError,
			wantErr:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fc := newTestRouter(t)
			fc.fail(tt.err)

			rec := do(t, h, http.MethodGet, "/api/v1/products", "", "")
			require.Equal(t, tt.wantCode, rec.Code)

			env := decode[any](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestCart_Flow(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	session := rec.Header().Get(handler.SessionHeader)
	require.NotEmpty(t, session)

	body := decode[cartBody](t, rec).Data
	assert.Equal(t, session, body.SessionID)
	assert.Equal(t, "USD", body.Currency)
	assert.Equal(t, 1, body.ItemCount)

	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":3}`, session)
	require.Equal(t, http.StatusOK, rec.Code)

	body = decode[cartBody](t, rec).Data
	require.Len(t, body.Lines, 2)
	assert.Equal(t, int64(1), body.Lines[0].ProductID)
	assert.Equal(t, 2, body.Lines[0].Quantity)
	assert.Equal(t, "20.00", body.Lines[0].Subtotal)
	assert.Equal(t, 3, body.ItemCount)
	assert.Equal(t, "25.50", body.Total)
	assert.Equal(t, "$25.50", body.TotalFormatted)

	rec = do(t, h, http.MethodPut, "/api/v1/cart/items/3", `{"quantity":4}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42.00", decode[cartBody](t, rec).Data.Total)

	rec = do(t, h, http.MethodPut, "/api/v1/cart/items/1", `{"quantity":0}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec).Data
	require.Len(t, body.Lines, 1)
	assert.Equal(t, int64(3), body.Lines[0].ProductID)

	rec = do(t, h, http.MethodDelete, "/api/v1/cart/items/3", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartBody](t, rec).Data.Lines)

	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/cart", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec).Data
	assert.Empty(t, body.Lines)
	assert.Equal(t, "0.00", body.Total)

	// a different session has its own cart
	rec = do(t, h, http.MethodGet, "/api/v1/cart", "", "other")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "other", decode[cartBody](t, rec).Data.SessionID)
}

func TestCart_BadRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing product id",
			method:   http.MethodPost,
			target:   "/api/v1/cart/items",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "negative product id",
			method:   http.MethodPost,
			target:   "/api/v1/cart/items",
			body:     `{"product_id":-4}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "malformed body",
			method:   http.MethodPost,
			target:   "/api/v1/cart/items",
			body:     `{"product_id":`,
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
		{
			name:     "unknown product",
			method:   http.MethodPost,
			target:   "/api/v1/cart/items",
			body:     `{"product_id":77}`,
			wantCode: http.StatusNotFound,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "missing quantity",
			method:   http.MethodPut,
			target:   "/api/v1/cart/items/1",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "quantity above limit",
			method:   http.MethodPut,
			target:   "/api/v1/cart/items/1",
			body:     `{"quantity":9223372036854775807}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "bad path id",
			method:   http.MethodDelete,
			target:   "/api/v1/cart/items/x1",
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_PARAMETER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body, "s1")
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			env := decode[any](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func TestCart_QuantityLimit(t *testing.T) {
	h, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`, "s1").Code)

	rec := do(t, h, http.MethodPut, "/api/v1/cart/items/1", `{"quantity":100}`, "s1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`, "s1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[any](t, rec).Error.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/cart", "", "s1")
	body := decode[cartBody](t, rec).Data
	require.Len(t, body.Lines, 1)
	assert.Equal(t, 100, body.Lines[0].Quantity)
	assert.Equal(t, 100, body.ItemCount)
	assert.Equal(t, "1000.00", body.Total)
}

func TestCheckout(t *testing.T) {
	type receiptBody struct {
		OrderNumber string `json:"order_number"`
		ItemCount   int    `json:"item_count"`
		Total       string `json:"total"`
		Lines       []struct {
			Title     string `json:"title"`
			Quantity  int    `json:"quantity"`
			UnitPrice string `json:"unit_price"`
		} `json:"lines"`
	}

	t.Run("empty cart", func(t *testing.T) {
		h, _ := newTestRouter(t)

		rec := do(t, h, http.MethodPost, "/api/v1/checkout", "", "s1")
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EMPTY_CART", decode[any](t, rec).Error.Code)
	})

	t.Run("json receipt clears cart", func(t *testing.T) {
		h, _ := newTestRouter(t)

		for _, body := range []string{`{"product_id":1}`, `{"product_id":1}`, `{"product_id":2}`} {
			require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/cart/items", body, "s1").Code)
		}

		rec := do(t, h, http.MethodPost, "/api/v1/checkout", "", "s1")
		require.Equal(t, http.StatusCreated, rec.Code)

		rcpt := decode[receiptBody](t, rec).Data
		assert.Len(t, rcpt.OrderNumber, 9)
		assert.Equal(t, 3, rcpt.ItemCount)
		assert.Equal(t, "270.00", rcpt.Total)
		require.Len(t, rcpt.Lines, 2)
		assert.Equal(t, "Red Lipstick", rcpt.Lines[0].Title)
		assert.Equal(t, "10.00", rcpt.Lines[0].UnitPrice)

		rec = do(t, h, http.MethodGet, "/api/v1/cart", "", "s1")
		assert.Empty(t, decode[cartBody](t, rec).Data.Lines)

		rec = do(t, h, http.MethodPost, "/api/v1/checkout", "", "s1")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("text receipt", func(t *testing.T) {
		h, _ := newTestRouter(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":3}`, "s1").Code)

		rec := do(t, h, http.MethodPost, "/api/v1/checkout?format=text", "", "s1")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="receipt-`)
		assert.Contains(t, rec.Body.String(), "eStore - Order Receipt")
		assert.Contains(t, rec.Body.String(), "Face Cream")
	})

	t.Run("html receipt", func(t *testing.T) {
		h, _ := newTestRouter(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`, "s1").Code)

		rec := do(t, h, http.MethodPost, "/api/v1/checkout?format=html", "", "s1")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Oak Table")
	})

	t.Run("unknown format keeps cart", func(t *testing.T) {
		h, _ := newTestRouter(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`, "s1").Code)

		rec := do(t, h, http.MethodPost, "/api/v1/checkout?format=pdf", "", "s1")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, h, http.MethodGet, "/api/v1/cart", "", "s1")
		assert.Len(t, decode[cartBody](t, rec).Data.Lines, 1)
	})
}

func TestAdmin(t *testing.T) {
	h, fc := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/admin/products", `{"price":3}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[any](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "Title")
	assert.Contains(t, env.Error.Fields, "Category")

	rec = do(t, h, http.MethodPost, "/api/v1/admin/products", `{"title":"Lamp","category":"home","price":19.5}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Product](t, rec).Data
	assert.Equal(t, "Lamp", created.Title)
	assert.True(t, decimal.RequireFromString("19.5").Equal(created.Price))

	rec = do(t, h, http.MethodPut, "/api/v1/admin/products/101", `{"title":"Desk Lamp"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Desk Lamp", decode[domain.Product](t, rec).Data.Title)

	rec = do(t, h, http.MethodPut, "/api/v1/admin/products/101", `{"price":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/admin/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Product](t, rec).Data, 4)

	rec = do(t, h, http.MethodDelete, "/api/v1/admin/products/101", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	products, err := fc.ListProducts(t.Context())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	rec = do(t, h, http.MethodDelete, "/api/v1/admin/products/0", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[any](t, rec).Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.SessionHeader))

	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
