package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/payrelay/payrelay/handler"
)

// Routes mounts the payment API endpoints. The checkout page is the only
// intended caller; every endpoint accepts JSON and answers JSON.
func Routes(r chi.Router, paymentHandler *handler.PaymentHandler, healthHandler *handler.HealthHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/create-payment", paymentHandler.CreatePayment)
		r.Post("/create-applepay-payment", paymentHandler.CreateApplePayPayment)
		r.Post("/validate-apple-merchant", paymentHandler.ValidateAppleMerchant)
	})

	r.Get("/health", healthHandler.CheckHealth)
}
