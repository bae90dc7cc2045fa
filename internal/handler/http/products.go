package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/browse"
	"github.com/nikolayk812/storefront/internal/port"
)

const defaultFeaturedLimit = 4

// ProductHandler serves the shop listing pages.
type ProductHandler struct {
	catalog port.ProductCatalog
	logger  *slog.Logger
}

func NewProductHandler(catalog port.ProductCatalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// List handles GET /api/v1/products?q=&category=&sort=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sort, err := browse.ParseSort(query.Get("sort"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, browse.Filter(products, browse.Query{
		Search:   query.Get("q"),
		Category: query.Get("category"),
		Sort:     sort,
	}))
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// Featured handles GET /api/v1/products/featured?limit=
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeFail(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, browse.Featured(products, limit))
}

type categoryResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	counts := browse.CountByCategory(products)
	names := browse.Categories(products)

	out := make([]categoryResponse, 0, len(names))
	for _, name := range names {
		n := counts[name]
		if name == browse.AllCategories {
			n = len(products)
		}
		out = append(out, categoryResponse{Name: name, Count: n})
	}

	writeData(w, http.StatusOK, out)
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid product id: "+raw)
		return 0, false
	}
	return id, true
}
