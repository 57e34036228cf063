package router

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// The webhook receiver and catalogue reads stay outside the authenticated
// group; the webhook's trust comes from its signature, not a token.
func New(
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	verifier auth.Verifier,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Public catalogue reads
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)
		r.Get("/categories", catalogHandler.ListCategories)

		// Signature-verified, transport-unauthenticated
		r.Post("/payment/webhook", paymentHandler.Webhook)

		// Token-authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(verifier, logger))

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{id}", orderHandler.GetByID)
			r.Patch("/orders/{id}", orderHandler.SetStatus)

			r.Post("/payment/create/{orderId}", paymentHandler.CreateSession)
		})
	})

	return r
}
