package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/logger"
)

const msgCatalogUnreachable = "No response received from the product catalog. Please try again later."

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Data: data})
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{Error: &errorResponse{Code: code, Message: message}})
}

// writeError maps service and catalog errors to user-visible responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context(), fallback)

	var (
		validationErr *ValidationError
		statusErr     *catalog.StatusError
		recordErr     *catalog.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, response{Error: &errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  validationErr.Fields(),
		}})
	case errors.Is(err, errBadBody):
		writeFail(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, cart.ErrMissingSession), errors.Is(err, cart.ErrQuantityLimit):
		writeFail(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, catalog.ErrInvalidProductID):
		writeFail(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeFail(w, http.StatusNotFound, "NOT_FOUND", "product not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeFail(w, http.StatusConflict, "EMPTY_CART", "cart is empty")
	case errors.Is(err, catalog.ErrNoResponse):
		l.WarnContext(r.Context(), "catalog unreachable", slog.String("error", err.Error()))
		writeFail(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", msgCatalogUnreachable)
	case errors.As(err, &statusErr):
		l.WarnContext(r.Context(), "catalog rejected request",
			slog.Int("status", statusErr.StatusCode),
			slog.String("body", statusErr.Body),
		)
		writeFail(w, http.StatusBadGateway, "CATALOG_REJECTED", statusErr.Error())
	case errors.As(err, &recordErr):
		writeFail(w, http.StatusBadGateway, "CATALOG_INVALID", recordErr.Error())
	default:
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeFail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
