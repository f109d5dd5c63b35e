package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"assetguard/internal/core"
	"assetguard/internal/engine"
	"assetguard/internal/ledger/memory"
	applog "assetguard/internal/log"
	"assetguard/internal/middleware/ratelimit"
	"assetguard/internal/middleware/security"
	"assetguard/internal/middleware/trace"
	"assetguard/internal/services"
	appweb "assetguard/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 10 * time.Second

// PriceSource supplies one quote per catalogue instrument. *market.Service implements it.
type PriceSource interface {
	Prices(ctx context.Context) (map[string]core.Quote, error)
}

// Options wires the server to the ledger, engine and price source.
type Options struct {
	Ledger     *services.LedgerService
	Engine     *engine.Engine
	Prices     PriceSource
	Projection engine.ProjectionConfig

	// Rollover is the default when a request carries no rollover flag.
	Rollover      bool
	DefaultBudget int64

	// Local enables the offline fallback: reads that fail with
	// core.ErrStorageUnavailable render an empty read-only view with a warning.
	Local bool
	// Offline is set when the process already started on the fallback store.
	Offline bool

	// Ready is polled by /readyz. Nil means always ready.
	Ready func(ctx context.Context) error

	Logger    *slog.Logger
	RateLimit ratelimit.Config
	Now       func() time.Time
}

// Server handles the dashboard, form posts and the JSON API.
type Server struct {
	opts      Options
	templates *template.Template
	static    http.Handler
	fallback  *engine.Engine
	logger    *slog.Logger
	detector  *security.Detector
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	now       func() time.Time
}

// New parses the embedded templates and builds the server.
func New(opts Options) (*Server, error) {
	if opts.Ledger == nil || opts.Engine == nil || opts.Prices == nil {
		return nil, fmt.Errorf("%w: http server needs ledger, engine and price source", core.ErrConfiguration)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		opts:      opts,
		templates: tmpl,
		static:    http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
		logger:    applog.WithComponent(logger, applog.ComponentHTTP),
		detector:  security.NewDetector(logger),
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		now:       now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)
	if opts.Local {
		s.fallback = engine.New(memory.NewReadOnly(opts.DefaultBudget))
	}
	return s, nil
}

// NewServer returns an *http.Server for addr with the router installed.
func NewServer(addr string, opts Options) (*http.Server, error) {
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}, nil
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/static/*", s.static)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, s.handleRateLimited))

		r.Get("/", s.handleDashboard)
		r.Get("/ledger", s.handleLedgerPartial)
		r.Post("/expenses", s.handleCreateExpense)
		r.Post("/expenses/delete", s.handleDeleteExpenses)
		r.Post("/budget", s.handleSetBudget)

		r.Route("/api", func(r chi.Router) {
			r.Get("/summary", s.handleAPISummary)
			r.Get("/projections", s.handleAPIProjections)
			r.Post("/expenses", s.handleAPICreateExpense)
			r.Delete("/expenses", s.handleAPIDeleteExpenses)
			r.Put("/budget", s.handleAPISetBudget)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	msg := "Too many requests. Please wait a minute and try again."
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, msg).Write(w)
		return
	}
	respondError(w, http.StatusTooManyRequests, msg)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
