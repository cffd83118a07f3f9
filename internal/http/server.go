package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr string
	// RequestsPerMinute caps each client; 0 uses the limiter default.
	RequestsPerMinute int
	// AllowOrigin enables CORS for a UI served from another origin.
	AllowOrigin string
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header is trusted.
	TrustedProxies []string
	// Ready reports whether the data backend is reachable.
	Ready  func(context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server
	ledger *services.LedgerService
	market *services.MarketService
	ready  func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// market may be nil, in which case the market endpoints answer 502.
func NewServer(opts Options, ledger *services.LedgerService, market *services.MarketService) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RequestsPerMinute
	}

	s := &Server{
		ledger:   ledger,
		market:   market,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(limiterCfg),
		detector: security.NewDetector(),
		logger:   logger,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "error", err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	headersCfg := security.DefaultHeadersConfig()
	headersCfg.AllowOrigin = opts.AllowOrigin

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(handler)
	handler = security.NewHeadersMiddleware(headersCfg).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/views/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/views/bar", s.handleBar)
	mux.HandleFunc("GET /api/views/donut", s.handleDonut)
	mux.HandleFunc("GET /api/views/networth", s.handleNetWorth)
	mux.HandleFunc("GET /api/views/transactions", s.handleTransactionList)
	mux.HandleFunc("GET /api/views/crypto", s.handleCrypto)
	mux.HandleFunc("GET /api/views/inflation", s.handleInflation)

	mux.HandleFunc("GET /api/fx/rate", s.handleFXRate)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	ip := s.detector.ExtractClientIP(r)
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, ip,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown stops the limiter cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

type readiness struct {
	Status    string                   `json:"status"`
	Error     string                   `json:"error,omitempty"`
	Limiter   ratelimit.Metrics        `json:"rateLimiter"`
	Requests  trace.Metrics            `json:"requests"`
	Detection security.DetectionMetrics `json:"detection"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	body := readiness{
		Status:    "ready",
		Limiter:   s.limiter.GetMetrics(),
		Requests:  s.tracer.GetMetrics(),
		Detection: s.detector.GetMetrics(),
	}
	status := http.StatusOK
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			body.Status, body.Error = "unavailable", "backend unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}
