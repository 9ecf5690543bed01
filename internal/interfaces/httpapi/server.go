package httpapi

import (
	"net/http"

	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	CORSAllowedOrigins []string
	// MetricsHandler is mounted on GET /metrics when set.
	MetricsHandler http.Handler
	Observer       HTTPObserver
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.MetricsHandler)
	registerPlayerRoutes(mux, handler)
	registerMatchRoutes(mux, handler)
	registerLeaderboardRoutes(mux, handler)

	return RequestID(
		RequestTracing(
			RequestLogging(logger,
				CORS(opts.CORSAllowedOrigins,
					RequestMetrics(opts.Observer, recoverPanic(logger, mux)),
				),
			),
		),
	)
}

// recoverPanic passes r through untouched so the mux pattern stays visible to
// RequestMetrics.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "http_path", r.URL.Path)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
