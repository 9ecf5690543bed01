package observability

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/config"
)

// NewPprofServer returns the profiling listener, or nil when PPROF_ENABLED=false.
// Profiles are served on their own listener, never on the API port.
func NewPprofServer(cfg config.Config) *http.Server {
	if !cfg.PprofEnabled {
		return nil
	}
	return &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           pprofMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	for name, h := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		mux.HandleFunc("/debug/pprof/"+name, h)
	}
	return mux
}
