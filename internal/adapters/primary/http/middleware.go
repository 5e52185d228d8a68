package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// middleware decorates a handler
type middleware func(http.Handler) http.Handler

// chain applies mws so that the first one is outermost
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusRecorder remembers the status code and body size written through it
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Hijack lets /ws and /rpc upgrades through the chain
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	sr.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// withRecovery answers 500 when a handler panics
func withRecovery(logger *HTTPLogger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("Handler for %s %s panicked: %v", r.Method, r.URL.Path, v)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// withRequestLog writes one line per request
func withRequestLog(logger *HTTPLogger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			logger.Info("%s %s -> %d (%d bytes, %v)", r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(began))
		})
	}
}

var securityHeaders = map[string]string{
	"Content-Security-Policy": strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self' ws: wss:",
		"frame-src 'self' about:",
		"frame-ancestors 'self'",
	}, "; "),
	"X-Frame-Options":        "SAMEORIGIN",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"X-DNS-Prefetch-Control": "off",
}

// withSecurityHeaders sets securityHeaders on every response.
// The preview iframe uses srcdoc, hence frame-src about:.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range securityHeaders {
			w.Header().Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that have drained their token bucket
func withRateLimit(limiter *rateLimiter, metrics MetricsRecorder) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.allow(getClientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			metrics.RecordRateLimitHit()
			w.Header().Set("Retry-After", "1")
			w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(float64(limiter.limit), 'f', 0, 64))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		})
	}
}

// routeMetrics records requests under their route template, so it must run
// inside the router (mux.Router.Use)
func routeMetrics(metrics MetricsRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			metrics.RecordHTTPRequest(r.Method, routeTemplate(r), rec.status, time.Since(began))
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

// rateLimiter hands out one token bucket per client address and forgets idle clients
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idle:      5 * time.Minute,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow spends one token from ip's bucket
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.idle {
		cutoff := now.Add(-rl.idle)
		for addr, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, addr)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.bucket.AllowN(now, 1)
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
// Header values that are not IP addresses are ignored.
func getClientIP(r *http.Request) string {
	candidates := []string{
		strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0],
		r.Header.Get("X-Real-IP"),
	}
	for _, c := range candidates {
		if addr, err := netip.ParseAddr(strings.TrimSpace(c)); err == nil {
			return addr.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
