package httpapi

import "net/http"

func (h *Handler) RegisterPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayers")
	defer span.End()

	var req registerPlayersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.playerService.Register(ctx, req.Names)
	if err != nil {
		h.logFailure(ctx, "register players failed", err, "count", len(req.Names))
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registerPlayersResponse{
		Registered:    result.Registered,
		AlreadyExists: result.AlreadyExists,
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	name := r.PathValue("name")
	item, err := h.playerService.FindByName(ctx, name)
	if err != nil {
		h.logFailure(ctx, "get player failed", err, "name", name)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}
