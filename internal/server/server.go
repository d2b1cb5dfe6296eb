package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/matijazezelj/degrees/internal/graph"
)

// Options configures a Server.
type Options struct {
	Listen        string
	APIToken      string
	CORSOrigin    string
	SearchTimeout time.Duration
}

// Server is the read-only HTTP API over a loaded movie graph.
type Server struct {
	store         graph.Store
	engine        graph.GraphEngine
	logger        *slog.Logger
	listen        string
	apiToken      string
	corsOrigin    string
	searchTimeout time.Duration
	srv           *http.Server
	flight        singleflight.Group

	// rate limiter state
	limiters sync.Map // map[string]*ipLimiter
	stop     chan struct{}
	stopOnce sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func newIPLimiter() *ipLimiter {
	il := &ipLimiter{limiter: rate.NewLimiter(10, 20)}
	il.touch()
	return il
}

func (il *ipLimiter) touch() { il.lastSeen.Store(time.Now().UnixNano()) }

func (il *ipLimiter) idle() time.Duration {
	return time.Since(time.Unix(0, il.lastSeen.Load()))
}

type ctxKey int

const requestIDKey ctxKey = iota

// New creates a new Server.
func New(store graph.Store, engine graph.GraphEngine, logger *slog.Logger, opts Options) *Server {
	return &Server{
		store:         store,
		engine:        engine,
		logger:        logger,
		listen:        opts.Listen,
		apiToken:      opts.APIToken,
		corsOrigin:    opts.CORSOrigin,
		searchTimeout: opts.SearchTimeout,
		stop:          make(chan struct{}),
	}
}

// securityHeaders adds standard security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with an id, reusing a sane inbound
// X-Request-ID so callers can correlate logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the id assigned by the request id middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// rateLimiter limits API requests to 10/sec burst 20 per client IP.
func (s *Server) rateLimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if ip == "" {
			ip = r.RemoteAddr
		}

		val, ok := s.limiters.Load(ip)
		if !ok {
			val, _ = s.limiters.LoadOrStore(ip, newIPLimiter())
		}
		il := val.(*ipLimiter)
		il.touch()

		if !il.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sweepLimiters drops limiter entries idle for more than ten minutes.
func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.pruneLimiters(10 * time.Minute)
		}
	}
}

// pruneLimiters drops limiters idle for longer than maxIdle.
func (s *Server) pruneLimiters(maxIdle time.Duration) {
	s.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).idle() > maxIdle {
			s.limiters.Delete(key)
		}
		return true
	})
}

// corsMiddleware adds CORS headers when a cors_origin is configured.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware returns a handler that checks for a valid bearer token
// on /api/ routes when an API token is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// healthz and metrics stay open for probes and scrapers
		if s.apiToken != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, s)

	// Middleware chain: request id → security headers → CORS → rate limit → auth → mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.rateLimiter(handler)
	handler = s.corsMiddleware(handler)
	handler = securityHeaders(handler)
	handler = requestID(handler)
	return handler
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.searchTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.sweepLimiters()

	s.logger.Info("starting server", "listen", s.listen, "search_timeout", s.searchTimeout)
	if s.apiToken != "" {
		s.logger.Info("API authentication enabled")
	} else {
		s.logger.Warn("API authentication disabled (set server.api_token to enable)")
	}
	fmt.Printf("degrees API running at http://localhost%s\n", s.listen)

	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
