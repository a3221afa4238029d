// Package payrelay provides a server-side payment relay that fronts the
// Razorpay gateway for a browser checkout page. The page never holds
// merchant credentials; the relay resolves them per region, drives the
// gateway's two-step order/payment protocol, and normalizes the gateway's
// heterogeneous responses into one JSON contract.
//
// # Overview
//
// Razorpay's payment-creation endpoint answers in several shapes: a JSON
// payload describing a terminal result, a JSON payload carrying a redirect
// action for step-up authentication, or an HTML document embedding the
// redirect URL. The relay hides that variance. The checkout page sends one
// request and receives either a completed payment, a redirect instruction,
// or a structured error.
//
// # Architecture
//
// The payment flow follows this pattern:
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│  Checkout Page  │◄──►│    PayRelay     │◄──►│    Razorpay     │
//	│   (browser)     │    │    (relay)      │    │   (gateway)     │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// Every payment is two strictly sequential gateway calls: an order is
// created first, then the payment is created against that order. No step
// is ever retried; a duplicate submission could double-create an order.
//
// # Regions
//
// Each supported region carries its own merchant credential pair and
// settlement currency, loaded from the environment at startup:
//
//	RAZORPAY_IN_KEY_ID / RAZORPAY_IN_KEY_SECRET  (INR)
//	RAZORPAY_AE_KEY_ID / RAZORPAY_AE_KEY_SECRET  (AED)
//	RAZORPAY_US_KEY_ID / RAZORPAY_US_KEY_SECRET  (USD)
//	RAZORPAY_GB_KEY_ID / RAZORPAY_GB_KEY_SECRET  (GBP)
//	RAZORPAY_SG_KEY_ID / RAZORPAY_SG_KEY_SECRET  (SGD)
//
// A request naming an unknown or unconfigured region is rejected before
// any gateway call. Secrets are used for HTTP Basic authentication only
// and never appear in logs, responses, or error payloads.
//
// # HTTP API
//
//	# Card payment
//	POST /api/create-payment
//
//	# Apple Pay payment
//	POST /api/create-applepay-payment
//
//	# Apple Pay merchant session
//	POST /api/validate-apple-merchant
//
//	# Health and per-region configuration state
//	GET /health
//
// Gateway rejections pass through verbatim with the gateway's own status
// code so the page can act on gateway-specific error codes. Relay-level
// failures use a standardized envelope:
//
//	{"error": {"code": "BAD_REQUEST", "description": "..."}}
//
// # Logging and Auditing
//
// Payment attempts are recorded to a local SQLite audit log, and request
// and response pairs can be shipped to OpenSearch. Card numbers, CVVs and
// credentials are masked before anything is persisted.
package payrelay
