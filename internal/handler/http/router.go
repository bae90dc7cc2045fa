// Package http exposes the storefront over a JSON HTTP API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Catalog  port.ProductCatalog
	Carts    CartService
	Checkout CheckoutService
	Logger   *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	products := NewProductHandler(deps.Catalog, deps.Logger)
	carts := NewCartHandler(deps.Carts, deps.Logger)
	checkout := NewCheckoutHandler(deps.Checkout, deps.Logger)
	admin := NewAdminHandler(deps.Catalog, deps.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(Metrics)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Session)

		r.Get("/categories", products.Categories)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/featured", products.Featured)
			r.Get("/{id}", products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.Get)
			r.Delete("/", carts.Clear)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{productId}", carts.UpdateItem)
			r.Delete("/items/{productId}", carts.RemoveItem)
		})

		r.Post("/checkout", checkout.Checkout)

		r.Route("/admin/products", func(r chi.Router) {
			r.Get("/", admin.List)
			r.Post("/", admin.Create)
			r.Put("/{id}", admin.Update)
			r.Delete("/{id}", admin.Delete)
		})
	})

	return r
}
