package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/storefront/internal/receipt"
)

type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string) (receipt.Receipt, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type receiptResponse struct {
	OrderNumber    string                `json:"order_number"`
	IssuedAt       time.Time             `json:"issued_at"`
	Lines          []receiptLineResponse `json:"lines"`
	ItemCount      int                   `json:"item_count"`
	Total          string                `json:"total"`
	TotalFormatted string                `json:"total_formatted"`
}

type receiptLineResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

func toReceiptResponse(r receipt.Receipt) receiptResponse {
	resp := receiptResponse{
		OrderNumber:    r.OrderNumber,
		IssuedAt:       r.IssuedAt,
		Lines:          make([]receiptLineResponse, 0, len(r.Lines)),
		ItemCount:      r.ItemCount,
		Total:          r.Total.Amount.StringFixed(2),
		TotalFormatted: receipt.FormatPrice(r.Total),
	}

	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, receiptLineResponse{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount.StringFixed(2),
			Subtotal:  l.Subtotal.Amount.StringFixed(2),
		})
	}

	return resp
}

// Checkout handles POST /api/v1/checkout?format=json|text|html
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "text", "html":
	default:
		writeFail(w, http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("unknown format %q", format))
		return
	}

	rcpt, err := h.checkout.Checkout(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	switch format {
	case "text":
		body, err := rcpt.Text()
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rcpt.FileName()))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	case "html":
		body, err := rcpt.HTML()
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	default:
		writeData(w, http.StatusCreated, toReceiptResponse(rcpt))
	}
}
