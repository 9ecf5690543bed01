package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

const matchSubmittedMessage = "Match submitted successfully!"

func approvedMessage(n int) string {
	return fmt.Sprintf("%d matches approved!", n)
}

func (h *Handler) SubmitMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMatch")
	defer span.End()

	var req submitMatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Submit(ctx, usecase.SubmitMatchInput{
		Winner:   req.Winner,
		Loser:    req.Loser,
		SetScore: req.SetScore,
	})
	if err != nil {
		h.logFailure(ctx, "submit match failed", err, "winner", req.Winner, "loser", req.Loser)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submitMatchResponse{
		Message: matchSubmittedMessage,
		Match:   matchToDTO(item),
	})
}

func (h *Handler) ApproveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveMatches")
	defer span.End()

	var req approveMatchesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	span.SetAttributes(attribute.Int("match.requested_ids", len(req.MatchIDs)))
	result, err := h.matchService.Approve(ctx, req.MatchIDs)
	if err != nil {
		h.logFailure(ctx, "approve matches failed", err, "match_ids", req.MatchIDs)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, approveResponse(result))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("matchID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(ctx, w, errors.Wrapf(usecase.ErrInvalidInput, "match id must be an integer, got %q", raw))
		return
	}

	span.SetAttributes(attribute.Int64("match.id", id))
	item, err := h.matchService.Get(ctx, id)
	if err != nil {
		h.logFailure(ctx, "get match failed", err, "match_id", id)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) ListPendingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingMatches")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchService.ListPending(ctx, limit)
	if err != nil {
		h.logFailure(ctx, "list pending matches failed", err, "limit", limit)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}
