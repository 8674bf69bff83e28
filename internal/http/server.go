// Package http serves the ledger JSON API on net/http with Go 1.22 route patterns.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/middleware/ratelimit"
	"github.com/kengo-k/taxdesk-sub002/internal/middleware/security"
	"github.com/kengo-k/taxdesk-sub002/internal/middleware/trace"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
	"github.com/kengo-k/taxdesk-sub002/internal/storage"
)

// Deps are the engine services the API exposes.
type Deps struct {
	Repo       *storage.SQLiteRepository
	Journals   *services.JournalService
	Payroll    *services.PayrollGate
	Aggregator *services.Aggregator
	Reports    *services.ReportAssembler
}

type Server struct {
	http.Server

	deps         Deps
	logger       *log.Logger
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

type Option func(*serverOptions)

type serverOptions struct {
	rateLimit int
}

// WithRateLimit caps requests per client per minute. Zero disables the limiter.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.rateLimit = perMinute }
}

func NewServer(addr string, deps Deps, logger *log.Logger, opts ...Option) *Server {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		deps:   deps,
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(s.logger)(handler)
	if o.rateLimit > 0 {
		clients := security.NewClientResolver()
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimit})
		handler = s.rateLimiter.Middleware(clients.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			NewJSONResponse().
				Status(http.StatusTooManyRequests).
				Data(map[string]ErrorBody{"error": {Kind: "RATE_LIMITED", Code: "RATE_LIMITED", Message: "rate limit exceeded"}}).
				Write(w)
		})(handler)
	}
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	s.tracer = trace.NewMiddleware(s.logger)
	s.Handler = s.tracer.Middleware(handler)

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/fiscal-years", s.handleListFiscalYears)

	mux.HandleFunc("GET /api/fiscal-years/{fy}/journals", s.handleListJournals)
	mux.HandleFunc("POST /api/fiscal-years/{fy}/journals", s.handleCreateJournal)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/journals/checked-statuses", s.handleCheckedStatuses)
	mux.HandleFunc("POST /api/fiscal-years/{fy}/journals/delete", s.handleDeleteJournals)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/journals/{id}", s.handleGetJournal)
	mux.HandleFunc("PUT /api/fiscal-years/{fy}/journals/{id}/checked", s.handleSetChecked)

	mux.HandleFunc("POST /api/fiscal-years/{fy}/reports", s.handleReports)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/ledgers/{account}", s.handleLedger)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/cash-balance", s.handleCashBalance)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/account-counts", s.handleAccountCounts)

	mux.HandleFunc("GET /api/fiscal-years/{fy}/payroll-payments", s.handleListPayments)
	mux.HandleFunc("GET /api/fiscal-years/{fy}/payroll-payments/check", s.handleCheckPayments)
	mux.HandleFunc("PUT /api/fiscal-years/{fy}/payroll-payments/{month}", s.handleSetPayment)
}

// Shutdown stops the rate limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns request counters from the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}
