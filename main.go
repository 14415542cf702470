package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appcart "github.com/flashmarket/storefront/internal/application/cart"
	"github.com/flashmarket/storefront/internal/domain/catalog"
	"github.com/flashmarket/storefront/internal/infrastructure/id"
	"github.com/flashmarket/storefront/internal/infrastructure/memory"
	infraobs "github.com/flashmarket/storefront/internal/infrastructure/observability"
	"github.com/flashmarket/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/flashmarket/storefront/internal/infrastructure/observability/prometrics"
	"github.com/flashmarket/storefront/internal/infrastructure/observability/zaplogger"
	infrapay "github.com/flashmarket/storefront/internal/infrastructure/payment"
	"github.com/flashmarket/storefront/internal/observability"
	httppresentation "github.com/flashmarket/storefront/internal/presentation/http"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "storefront")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("ADDR", ":8080")
	historyLimit := getenvIntDefault("HISTORY_LIMIT", appcart.DefaultHistoryLimit)

	baseLogger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)
	if s, ok := baseLogger.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	metrics := prometrics.New("", serviceName)
	counters := map[observability.MetricKey]observability.Counter{
		observability.MCartOperations: metrics.Counter(
			string(observability.MCartOperations),
			"Total number of cart operations.",
			"op", "outcome",
		),
		observability.MCheckoutRevenue: metrics.Counter(
			string(observability.MCheckoutRevenue),
			"Revenue settled at checkout, in USD.",
		),
		observability.MHTTPRequests: metrics.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MCartOperationDuration: metrics.Histogram(
			string(observability.MCartOperationDuration),
			"Duration of cart operations in seconds.",
			prometheus.DefBuckets,
			"op",
		),
		observability.MHTTPRequestDuration: metrics.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "route", "status",
		),
	}

	tel := infraobs.New(oteltrace.New(serviceName), baseLogger, counters, histograms)
	log := tel.Logger().With(observability.F("component", "main"))

	store := memory.NewCatalog(sampleProducts()...)
	cartService := appcart.NewService(id.NewUUIDGenerator(), historyLimit, tel)

	products, err := store.List(context.Background())
	if err != nil {
		log.Error("catalog_list_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}
	cartService.SeedInventory(products)

	handler := httppresentation.NewHandler(cartService, store, infrapay.Methods(), tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		log.Info("http_server_stopped")
	}
}

// sampleProducts mirrors the demo catalog served to a fresh instance.
func sampleProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "laptop-pro-15", Name: "Laptop Pro 15\"", Price: 1299.99, Stock: 8, Category: "electronics", Description: "15-inch laptop with 16GB RAM and 512GB SSD"},
		{ID: "wireless-mouse", Name: "Wireless Mouse", Price: 24.99, Stock: 42, Category: "accessories", Description: "Ergonomic 2.4GHz wireless mouse"},
		{ID: "mech-keyboard", Name: "Mechanical Keyboard", Price: 89.99, Stock: 17, Category: "accessories", Description: "Tenkeyless board with hot-swappable switches"},
		{ID: "usb-c-hub", Name: "USB-C Hub", Price: 39.99, Stock: 25, Category: "accessories", Description: "7-in-1 hub with HDMI and card reader"},
		{ID: "noise-headphones", Name: "Noise Cancelling Headphones", Price: 199.99, Stock: 12, Category: "audio", Description: "Over-ear headphones with 30h battery"},
		{ID: "hd-webcam", Name: "HD Webcam", Price: 59.99, Stock: 30, Category: "accessories", Description: "1080p webcam with built-in microphone"},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
