package httpserver

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Clark-Hu/parks-catalog/internal/config"
	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/service"
	"github.com/Clark-Hu/parks-catalog/web"
)

const visitorTTL = 3 * time.Minute

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CatalogService is the business API the handlers delegate to.
type CatalogService interface {
	ListParks(ctx context.Context, filter service.ListFilter) ([]domain.ParkStats, error)
	GetPark(ctx context.Context, id int64) (domain.ParkDetail, error)
	CreatePark(ctx context.Context, input service.ParkInput) (domain.Park, error)
	UpdatePark(ctx context.Context, id int64, input service.ParkInput) (domain.Park, error)
	DeletePark(ctx context.Context, id int64) error
	CreateReview(ctx context.Context, parkID int64, input service.ReviewInput) (domain.Review, error)
	GetReview(ctx context.Context, id int64) (domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	svc      CatalogService
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	metrics  *httpMetrics
	limiter  *visitorTable
	assets   fs.FS
	files    http.Handler
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes. HTTP metrics are
// registered on reg and exposed at /metrics together with whatever else reg holds.
func New(cfg config.Config, health HealthChecker, svc CatalogService, reg *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	assets := web.Static()
	s := &Server{
		cfg:      cfg,
		health:   health,
		svc:      svc,
		logger:   logger,
		gatherer: reg,
		metrics:  newHTTPMetrics(reg),
		assets:   assets,
		files:    http.FileServerFS(assets),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = newVisitorTable(float64(cfg.RateLimitRPS), cfg.RateLimitBurst, visitorTTL)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogging(logger))
	r.Use(tracing(config.ServiceName))
	r.Use(requestLogger(logger))
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors(corsConfig{AllowedOrigins: cfg.CORSAllowedOrigins}))

	s.router = r
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.NotFound(s.handleFallback)
		r.MethodNotAllowed(s.handleMethodNotAllowed)
		if s.cfg.RequestTimeoutSecs > 0 {
			r.Use(middleware.Timeout(time.Duration(s.cfg.RequestTimeoutSecs) * time.Second))
		}
		if s.limiter != nil {
			r.Use(s.rateLimit(s.limiter))
		}

		r.Route("/parks", func(r chi.Router) {
			r.Get("/", s.handleListParks)
			r.Post("/", s.handleCreatePark)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPark)
				r.Put("/", s.handleUpdatePark)
				r.Delete("/", s.handleDeletePark)
				r.Post("/reviews", s.handleCreateReview)
			})
		})
		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetReview)
			r.Delete("/", s.handleDeleteReview)
		})
	})

	s.router.NotFound(s.handleFallback)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Health check not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
