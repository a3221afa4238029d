package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/payrelay/payrelay/handler"
	"github.com/payrelay/payrelay/infra/config"
	"github.com/payrelay/payrelay/infra/logger"
	"github.com/payrelay/payrelay/infra/middle"
	"github.com/payrelay/payrelay/infra/opensearch"
	"github.com/payrelay/payrelay/infra/response"
	"github.com/payrelay/payrelay/infra/storage"
	"github.com/payrelay/payrelay/provider"
	"github.com/payrelay/payrelay/provider/razorpay"
	"github.com/payrelay/payrelay/router"
)

var (
	openSearchLogger *opensearch.Logger
	openSearchClient *opensearch.Client
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchClient = osClient
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}
	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	cfg := config.GetAppConfig()
	regions := config.LoadRegions()

	// Attempt audit log; the relay still serves payments when it is down.
	var attemptStore *storage.AttemptStore
	var attemptLogger provider.AttemptLogger
	if cfg.EnableAttemptLog {
		store, err := storage.NewAttemptStore(cfg.AttemptDBPath)
		if err != nil {
			log.Printf("Failed to open attempt store: %v", err)
			log.Println("Continuing without attempt logging...")
		} else {
			attemptStore = store
			attemptLogger = store
			defer store.Close()
		}
	}

	gateway := razorpay.NewClient(razorpay.ClientOptions{
		BaseURL:         cfg.GatewayBaseURL,
		AppleMerchantID: cfg.AppleMerchantID,
	})

	paymentService := provider.NewPaymentService(regions, gateway, attemptLogger)
	paymentHandler := handler.NewPaymentHandler(paymentService, validator.New())
	healthHandler := handler.NewHealthHandler(regions, attemptStore, openSearchClient)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	// OpenSearch Logging Middleware
	if openSearchLogger != nil {
		r.Use(middle.PaymentLoggingMiddleware(openSearchLogger))
		log.Println("Payment logging middleware enabled")
	}

	// CORS; the checkout page calls from the browser.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300, // Preflight cache time (second)
	}))

	router.Routes(r, paymentHandler, healthHandler)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not Found")
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", cfg.Port)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
