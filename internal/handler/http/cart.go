package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/receipt"
)

// CartService is the session cart API the handlers drive.
type CartService interface {
	View(ctx context.Context, sessionID string) (domain.Cart, error)
	Add(ctx context.Context, sessionID string, productID int64) (domain.Cart, error)
	Remove(ctx context.Context, sessionID string, productID int64) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (domain.Cart, error)
	Clear(ctx context.Context, sessionID string) (domain.Cart, error)
}

type CartHandler struct {
	carts  CartService
	logger *slog.Logger
}

func NewCartHandler(carts CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

type AddItemRequest struct {
	ProductID *int64 `json:"product_id" validate:"required,gte=0"`
}

// UpdateQuantityRequest sets a line quantity; zero or less removes the line.
// The upper bound is domain.MaxQuantityPerItem.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=100"`
}

type cartResponse struct {
	SessionID      string             `json:"session_id"`
	Currency       string             `json:"currency"`
	Lines          []cartLineResponse `json:"lines"`
	ItemCount      int                `json:"item_count"`
	Total          string             `json:"total"`
	TotalFormatted string             `json:"total_formatted"`
}

type cartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Category  string `json:"category"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

func toCartResponse(c domain.Cart) cartResponse {
	total := c.Total()

	resp := cartResponse{
		SessionID:      c.OwnerID,
		Currency:       c.Currency.String(),
		Lines:          make([]cartLineResponse, 0, len(c.Lines)),
		ItemCount:      c.ItemCount(),
		Total:          total.Amount.StringFixed(2),
		TotalFormatted: receipt.FormatPrice(total),
	}

	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ProductID: l.ProductID,
			Title:     l.Title,
			Thumbnail: l.Thumbnail,
			Category:  l.Category,
			Price:     l.Price.Amount.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().Amount.StringFixed(2),
		})
	}

	return resp
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.View(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, toCartResponse(c))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, err := h.carts.Add(r.Context(), sessionID(r), *req.ProductID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, toCartResponse(c))
}

// UpdateItem handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), sessionID(r), productID, *req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, toCartResponse(c))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	c, err := h.carts.Remove(r.Context(), sessionID(r), productID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, toCartResponse(c))
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, toCartResponse(c))
}
