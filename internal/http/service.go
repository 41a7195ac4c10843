package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/self-checkout/api-contract"
	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/http/apierr"
	"github.com/tuanvumaihuynh/self-checkout/internal/http/metric"
	"github.com/tuanvumaihuynh/self-checkout/internal/http/middleware"
	"github.com/tuanvumaihuynh/self-checkout/internal/http/swagger"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
)

var tracer = otel.Tracer("internal/http")

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

// Services groups the application services the HTTP layer exposes.
type Services struct {
	Catalog   service.CatalogService
	Detection service.DetectionService
	Billing   service.BillingService
	Receipt   service.ReceiptService
}

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	services       Services
	healthCheckers map[string]HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	services Services,
	healthCheckers map[string]HealthChecker,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:            cfg,
		logger:         log.With(slog.String("service", "http")),
		registry:       registry,
		metrics:        metric.New(registry),
		services:       services,
		healthCheckers: healthCheckers,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	r := chi.NewRouter()
	if err := s.RegisterMiddlewares(ctx, r); err != nil {
		return nil, err
	}

	if s.cfg.Swagger {
		swagger.Register(r, "Self Checkout API", apicontract.GetSpecBytes())
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(ctx context.Context, r chi.Router) error {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsAllowedOrigins),
		middleware.Logging(s.logger),
	)

	if s.cfg.ValidateRequests {
		router, err := middleware.NewOpenAPIRouter(ctx, apicontract.GetSpecBytes())
		if err != nil {
			return fmt.Errorf("create request validator: %w", err)
		}
		r.Use(middleware.ValidateRequest(router, s.handleRequestError))
	}

	return nil
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := s.newHandler()

	r.Post("/add_products", s.handle(h.AddProducts))
	r.Get("/products", s.handle(h.ListProducts))
	r.Get("/products/{name}", s.handle(h.GetProduct))
	r.Post("/", s.handle(h.DetectObjects))
	r.Post("/print_bill", s.handle(h.PrintBill))
	r.Get("/receipts/{id}", s.handle(h.GetReceipt))
	r.Get("/healthz", h.Health)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handler returning an error to http.HandlerFunc.
func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleResponseError(w, r, requestErr(err))
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type handler struct {
	*catalogHandler
	*detectionHandler
	*billingHandler
	*receiptHandler
	*healthHandler
}

func (s *Service) newHandler() *handler {
	return &handler{
		catalogHandler:   newCatalogHandler(s.services.Catalog),
		detectionHandler: newDetectionHandler(s.cfg, s.services.Detection),
		billingHandler:   newBillingHandler(s.services.Billing),
		receiptHandler:   newReceiptHandler(s.services.Receipt),
		healthHandler:    newHealthHandler(s.logger, s.healthCheckers),
	}
}
