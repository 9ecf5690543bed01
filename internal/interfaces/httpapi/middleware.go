package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/platform/requestid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPObserver receives one observation per served request.
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// responseMeter records what a handler wrote. Nested middleware share one.
type responseMeter struct {
	http.ResponseWriter
	code  int
	bytes int
}

func meter(w http.ResponseWriter) *responseMeter {
	if m, ok := w.(*responseMeter); ok {
		return m
	}
	return &responseMeter{ResponseWriter: w}
}

func (m *responseMeter) WriteHeader(code int) {
	if m.code == 0 {
		m.code = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(b []byte) (int, error) {
	if m.code == 0 {
		m.code = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

func (m *responseMeter) status() int {
	if m.code == 0 {
		return http.StatusOK
	}
	return m.code
}

func (m *responseMeter) Unwrap() http.ResponseWriter { return m.ResponseWriter }

// RequestID reuses a sane inbound X-Request-ID or mints one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestid.Sanitize(r.Header.Get(requestid.Header))
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithContext(r.Context(), id)))
	})
}

// RequestLogging writes one access line per request; 5xx responses log at warn.
func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		m := meter(w)
		next.ServeHTTP(m, r)

		log := logger.InfoContext
		if m.status() >= http.StatusInternalServerError {
			log = logger.WarnContext
		}
		log(r.Context(), "http_request",
			"http_method", r.Method,
			"http_path", r.URL.Path,
			"http_status", m.status(),
			"response_bytes", m.bytes,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

// RequestMetrics must wrap the mux directly: r.Pattern is only set on the
// request the mux itself received.
func RequestMetrics(observer HTTPObserver, next http.Handler) http.Handler {
	if observer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		m := meter(w)
		next.ServeHTTP(m, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTPRequest(r.Method, route, m.status(), time.Since(started))
	})
}

// untracedPaths are probe and scrape endpoints, excluded from tracing.
var untracedPaths = map[string]struct{}{
	"/healthz": {}, "/health": {}, "/livez": {}, "/readyz": {}, "/metrics": {},
}

func shouldTraceRequest(path string) bool {
	_, skip := untracedPaths[strings.ToLower(strings.TrimSpace(path))]
	return !skip
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "scutta-ladder-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(allowed []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// grant sets the CORS response headers and reports whether origin is allowed.
func (p corsPolicy) grant(h http.Header, origin string) bool {
	if p.any {
		h.Set("Access-Control-Allow-Origin", "*")
	} else if _, ok := p.origins[origin]; ok {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	} else {
		return false
	}
	h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type,Accept,"+requestid.Header)
	h.Set("Access-Control-Expose-Headers", requestid.Header)
	h.Set("Access-Control-Max-Age", "600")
	return true
}

// CORS answers preflights with 204 and decorates cross-origin responses.
// Requests without an Origin header pass through untouched.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		policy.grant(w.Header(), origin)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
