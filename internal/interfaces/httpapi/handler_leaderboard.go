package httpapi

import (
	"net/http"

	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"go.opentelemetry.io/otel/attribute"
)

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard", attribute.String("leaderboard.category", category))
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.playerService.TopN(ctx, category, limit)
	if err != nil {
		h.logFailure(ctx, "leaderboard failed", err, "category", category, "limit", limit)
		writeError(ctx, w, err)
		return
	}

	// TopN accepted the category, so it parses.
	metric, _ := player.ParseMetric(category)
	writeSuccess(ctx, w, http.StatusOK, leaderboardEntries(metric, items))
}

func (h *Handler) LeaderboardOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaderboardOverview")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	boards, err := h.playerService.Overview(ctx, limit)
	if err != nil {
		h.logFailure(ctx, "leaderboard overview failed", err, "limit", limit)
		writeError(ctx, w, err)
		return
	}

	out := make(map[string][]map[string]any, len(boards))
	for metric, items := range boards {
		out[string(metric)] = leaderboardEntries(metric, items)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
