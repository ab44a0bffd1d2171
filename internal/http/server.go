// Package http exposes the ledger as a JSON API: entity CRUD, the budget
// and report endpoints, and the sufficient-funds pre-flight.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

// appMetrics tracks application-level counters exposed on /metrics.
type appMetrics struct {
	startedAt time.Time
	mutations int64
}

type Server struct {
	http.Server

	svc    *services.LedgerService
	logger *log.Logger
	slog   *log.StructuredLogger

	rateLimiter *rateLimiter
	secMetrics  securityMetrics
	appMetrics  appMetrics

	// reportCache holds marshaled report responses keyed by path+query.
	// Any mutation purges the whole cache; report inputs are too
	// interdependent to invalidate selectively.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes, middleware, and the report cache, returning a
// ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, cacheTTL time.Duration, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		svc:          svc,
		logger:       logger,
		slog:         log.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(),
		appMetrics:   appMetrics{startedAt: time.Now()},
		reportCache:  cache.NewLRUCache[[]byte](100, cacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /wallets", s.wrap(s.handleListWallets))
	mux.HandleFunc("POST /wallets", s.wrap(s.handleCreateWallet))
	mux.HandleFunc("GET /wallets/{id}", s.wrap(s.handleGetWallet))
	mux.HandleFunc("PUT /wallets/{id}", s.wrap(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /wallets/{id}", s.wrap(s.handleDeleteWallet))
	mux.HandleFunc("GET /wallets/{id}/sufficient-funds", s.wrap(s.handleSufficientFunds))

	mux.HandleFunc("GET /categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("GET /categories/{id}", s.wrap(s.handleGetCategory))
	mux.HandleFunc("PUT /categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("GET /transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.wrap(s.handleDeleteTransaction))

	mux.HandleFunc("GET /profile", s.wrap(s.handleGetProfile))
	mux.HandleFunc("PUT /profile", s.wrap(s.handleUpdateProfile))

	mux.HandleFunc("GET /reports/categories", s.wrap(s.cached(s.handleReportCategories)))
	mux.HandleFunc("GET /reports/timeline", s.wrap(s.cached(s.handleReportTimeline)))
	mux.HandleFunc("GET /reports/balance-history", s.wrap(s.cached(s.handleReportBalanceHistory)))
	mux.HandleFunc("GET /reports/trend", s.wrap(s.cached(s.handleReportTrend)))
	mux.HandleFunc("GET /reports/health", s.wrap(s.cached(s.handleReportHealth)))
	mux.HandleFunc("GET /budget/allocation", s.wrap(s.cached(s.handleBudgetAllocation)))
	mux.HandleFunc("GET /budget/projection", s.wrap(s.handleBudgetProjection))

	return s
}

// wrap adds security headers, rate limiting, request IDs, and request
// logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.slog.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, &s.secMetrics) {
			s.logger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, &s.secMetrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if isMutating(r.Method) && rw.statusCode < 400 {
			atomic.AddInt64(&s.appMetrics.mutations, 1)
			s.reportCache.Purge()
		}

		s.slog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// cached serves GET report responses from the LRU cache. Only 200 bodies
// are stored; mutations purge the cache in wrap.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		if body, ok := s.reportCache.Get(key); ok {
			s.logger.DebugContext(r.Context(), "Report cache hit", log.FieldPath, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)

		if rec.statusCode == http.StatusOK {
			s.reportCache.Set(key, rec.body)
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Shutdown stops the cache manager and rate limiter cleanup goroutines
// before shutting down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// recordingWriter additionally retains the body so it can be cached.
type recordingWriter struct {
	responseWriter
	body []byte
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return rw.responseWriter.ResponseWriter.Write(b)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
