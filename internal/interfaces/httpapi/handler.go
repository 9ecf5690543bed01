package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	playerService *usecase.PlayerService
	matchService  *usecase.MatchService
	health        HealthChecker
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	playerService *usecase.PlayerService,
	matchService *usecase.MatchService,
	health HealthChecker,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerService: playerService,
		matchService:  matchService,
		health:        health,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return errors.Wrapf(usecase.ErrInvalidInput, "validation failed: %v", err)
	}

	return nil
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		return errors.Wrapf(usecase.ErrInvalidInput, "read request body: %v", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.Wrap(usecase.ErrInvalidInput, "request body is required")
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(usecase.ErrInvalidInput, "invalid JSON payload: %v", err)
	}
	return nil
}

// parseLimit reads ?limit=. An absent value yields 0 so services apply their default.
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.Wrapf(usecase.ErrInvalidInput, "limit must be a positive integer, got %q", raw)
	}
	return limit, nil
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if classify(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
