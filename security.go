package main

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/olgasafonova/checkdigit-mcp-server/metrics"
	"golang.org/x/time/rate"
)

// limiterIdleTimeout is how long an unused per-IP limiter is kept.
const limiterIdleTimeout = time.Hour

// RateLimiter hands out a token bucket per client IP. Each bucket holds
// rate tokens and refills them evenly over interval.
type RateLimiter struct {
	rate     int
	interval time.Duration

	limiters sync.Map // ip -> *limiterEntry
	stopCh   chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// NewRateLimiter creates a limiter allowing n requests per interval per IP.
func NewRateLimiter(n int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rate:     n,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop(interval)
	return rl
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.limiter(ip).Allow()
}

// RetryAfter returns how long ip has to wait for its next token.
func (rl *RateLimiter) RetryAfter(ip string) time.Duration {
	r := rl.limiter(ip).Reserve()
	defer r.Cancel()
	return r.Delay()
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	now := time.Now()
	if v, ok := rl.limiters.Load(ip); ok {
		e := v.(*limiterEntry)
		e.mu.Lock()
		e.lastAccess = now
		e.mu.Unlock()
		return e.limiter
	}

	every := rate.Every(rl.interval / time.Duration(max(rl.rate, 1)))
	e := &limiterEntry{limiter: rate.NewLimiter(every, rl.rate), lastAccess: now}
	v, _ := rl.limiters.LoadOrStore(ip, e)
	return v.(*limiterEntry).limiter
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	every := max(interval, time.Minute)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			threshold := time.Now().Add(-limiterIdleTimeout)
			rl.limiters.Range(func(key, value any) bool {
				e := value.(*limiterEntry)
				e.mu.Lock()
				stale := e.lastAccess.Before(threshold)
				e.mu.Unlock()
				if stale {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// SecurityConfig holds limits for the HTTP transport.
type SecurityConfig struct {
	// RateLimit is requests per minute per IP, 0 disables limiting.
	RateLimit int
	// MaxBodySize caps request bodies in bytes, 0 disables the cap.
	MaxBodySize int64
}

// SecurityMiddleware applies rate limiting and body size limits and
// records HTTP metrics.
type SecurityMiddleware struct {
	next    http.Handler
	logger  *slog.Logger
	config  SecurityConfig
	limiter *RateLimiter
}

// NewSecurityMiddleware wraps next with the configured limits.
func NewSecurityMiddleware(next http.Handler, logger *slog.Logger, config SecurityConfig) *SecurityMiddleware {
	sm := &SecurityMiddleware{
		next:   next,
		logger: logger,
		config: config,
	}
	if config.RateLimit > 0 {
		sm.limiter = NewRateLimiter(config.RateLimit, time.Minute)
	}
	return sm
}

// Close releases the rate limiter.
func (sm *SecurityMiddleware) Close() {
	if sm.limiter != nil {
		sm.limiter.Close()
	}
}

func (sm *SecurityMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start).Seconds())
	}()

	ip := clientIP(r)
	if sm.limiter != nil && !sm.limiter.Allow(ip) {
		retry := int(math.Ceil(sm.limiter.RetryAfter(ip).Seconds()))
		metrics.RateLimitRejections.Inc()
		sm.logger.Debug("Rate limit exceeded", "client_ip", ip, "retry_after", retry)
		rec.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
		http.Error(rec, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if sm.config.MaxBodySize > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(rec, r.Body, sm.config.MaxBodySize)
	}

	sm.next.ServeHTTP(rec, r)
}

// clientIP returns the remote host without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
