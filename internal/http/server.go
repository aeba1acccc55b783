package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/address"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	appweb "financas/web"
)

// FinanceEvaluator turns a salary and expense text into a summary outcome.
type FinanceEvaluator interface {
	Evaluate(ctx context.Context, salary decimal.Decimal, text string) core.Outcome
}

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators the server needs. Finance and Lookup are
// required; the rest have defaults.
type Deps struct {
	Logger             *log.Logger
	Finance            FinanceEvaluator
	Lookup             address.Lookuper
	RateLimitPerMinute int
	TrustedProxies     []string
	ReadinessChecks    []ReadinessCheck

	// CacheCleanupInterval drives the cache manager; zero disables it.
	CacheCleanupInterval time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger
	events    *log.StructuredLogger

	finance FinanceEvaluator
	lookup  address.Lookuper
	checks  []ReadinessCheck

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	securityHeaders  *security.HeadersMiddleware
	traceMiddleware  *trace.Middleware
	cacheManager     *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s := &Server{
		logger:           httpLogger,
		events:           log.NewStructuredLogger(logger),
		finance:          deps.Finance,
		lookup:           deps.Lookup,
		checks:           deps.ReadinessChecks,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		securityDetector: detector,
		securityHeaders:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger.WithComponent(log.ComponentTrace)),
		cacheManager:     cache.NewManager(),
		startedAt:        time.Now(),
	}

	if c, ok := deps.Lookup.(cache.Cleaner); ok {
		s.cacheManager.Register(c)
	}
	if deps.CacheCleanupInterval > 0 {
		s.cacheManager.StartCleanup(deps.CacheCleanupInterval)
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLogger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", "error", err)
	}

	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("POST /ui/profile", limited(http.HandlerFunc(s.handleProfile)))
	mux.Handle("GET /ui/address", limited(http.HandlerFunc(s.handleAddress)))
	mux.Handle("POST /ui/finances", limited(http.HandlerFunc(s.handleFinances)))
	mux.Handle("POST /api/summary", limited(http.HandlerFunc(s.handleAPISummary)))

	var h http.Handler = mux
	h = s.securityHeaders.Middleware(h)
	h = detector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	if isAPI(r) {
		writeJSON(w, http.StatusTooManyRequests, apiError{Error: "rate limit exceeded"})
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Aguarde um instante e tente novamente.").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
