package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// AdminHandler manages the remote catalog on behalf of shop staff.
type AdminHandler struct {
	catalog port.ProductCatalog
	logger  *slog.Logger
}

func NewAdminHandler(catalog port.ProductCatalog, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, logger: logger}
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, products)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := decodeAndValidate(r, &input); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "product created",
		slog.Int64("product_id", product.ID),
		slog.String("title", product.Title),
	)
	writeData(w, http.StatusCreated, product)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var patch domain.ProductPatch
	if err := decodeAndValidate(r, &patch); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "product deleted", slog.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}
