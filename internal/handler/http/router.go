package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veymira/poslite/internal/service"
	"github.com/veymira/poslite/pkg/health"
	"github.com/veymira/poslite/pkg/middleware"
)

// NewRouter creates a chi router with all poslite routes registered.
func NewRouter(
	cartService *service.CartService,
	productService *service.ProductService,
	saleService *service.SaleService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("poslite"))
	r.Use(middleware.Tracing("poslite"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	cartHandler := NewCartHandler(cartService, logger)
	productHandler := NewProductHandler(productService, logger)
	saleHandler := NewSaleHandler(saleService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{id}", productHandler.GetProduct)
			r.Patch("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
			r.Post("/{id}/stock", productHandler.AdjustStock)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(UserIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/discount", cartHandler.SetDiscount)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.With(UserIDFromHeader).Post("/checkout", saleHandler.Checkout)

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", saleHandler.ListSales)
			r.Get("/{id}", saleHandler.GetSale)
		})
	})

	return r
}
