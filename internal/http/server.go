package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finmodel/internal/cache"
	"finmodel/internal/log"
	"finmodel/internal/middleware/ratelimit"
	"finmodel/internal/middleware/security"
	"finmodel/internal/middleware/trace"
	"finmodel/internal/services"
	"finmodel/internal/sink"
	"finmodel/internal/source"
)

// Options configures the report API server.
type Options struct {
	Addr              string
	RequestsPerMinute int
	HistorySize       int
	HistoryTTL        time.Duration
	// RunTimeout bounds one POST /reports run.
	RunTimeout time.Duration
}

// DefaultOptions returns the defaults used for zero fields.
func DefaultOptions() Options {
	return Options{
		Addr:              ":8080",
		RequestsPerMinute: 60,
		HistorySize:       20,
		HistoryTTL:        24 * time.Hour,
		RunTimeout:        time.Minute,
	}
}

// Server exposes report runs and the recent report history over HTTP.
type Server struct {
	http.Server

	service    *services.ReportService
	source     source.TransactionSource
	sink       sink.ReportSink
	history    *cache.ReportHistory
	caches     *cache.Manager
	limiter    *ratelimit.Limiter
	tracer     *trace.Middleware
	logger     *log.Logger
	runTimeout time.Duration
	started    time.Time

	shutdownOnce sync.Once
}

// NewServer wires the report routes. Every report the server produces is
// recorded in its history before being published to out.
func NewServer(opts Options, svc *services.ReportService, src source.TransactionSource, out sink.ReportSink, logger *log.Logger) *Server {
	defaults := DefaultOptions()
	if opts.Addr == "" {
		opts.Addr = defaults.Addr
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaults.HistorySize
	}
	if opts.HistoryTTL < 0 {
		opts.HistoryTTL = defaults.HistoryTTL
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = defaults.RunTimeout
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	history := cache.NewReportHistory(opts.HistorySize, opts.HistoryTTL)
	caches := cache.NewManager(logger)
	caches.Register(history)
	if opts.HistoryTTL > 0 {
		caches.StartCleanup(cleanupInterval(opts.HistoryTTL))
	}

	s := &Server{
		service:    svc,
		source:     src,
		sink:       sink.Fanout{history, out},
		history:    history,
		caches:     caches,
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:     trace.NewMiddleware(logger, security.ClientIP),
		logger:     logger,
		runTimeout: opts.RunTimeout,
		started:    time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("POST /reports", s.handleRunReport)
	mux.HandleFunc("GET /reports/latest", s.handleLatestReport)
	mux.HandleFunc("GET /reports/{id}", s.handleGetReport)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.RunTimeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// Sink returns the sink the server publishes through, so reports produced
// elsewhere in the process also land in the history.
func (s *Server) Sink() sink.ReportSink {
	return s.sink
}

// Shutdown stops background cleanup and gracefully shuts down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
