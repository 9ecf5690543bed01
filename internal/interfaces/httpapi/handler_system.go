package httpapi

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
)

const welcomeMessage = "Welcome to the SCUTTA API!"

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Welcome")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			h.logger.ErrorContext(ctx, "health check failed", "error", err)
			writeError(ctx, w, errors.Mark(errors.Wrap(err, "store unreachable"), usecase.ErrDependencyUnavailable))
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
