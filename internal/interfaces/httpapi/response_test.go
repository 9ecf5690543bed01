package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteSuccess_DataOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "2.0", body["apiVersion"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestWriteError_ClientErrorKeepsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.Wrapf(usecase.ErrNotFound, "player=%s", "ghost"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.NotContains(t, body, "data")

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errObj["status"])
	assert.Contains(t, errObj["message"], "player=ghost")
	details, ok := errObj["errors"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "notFound", details[0].(map[string]any)["reason"])
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	errObj, _ := decodeEnvelope(t, rec)["error"].(map[string]any)
	assert.Equal(t, internalErrorMessage, errObj["message"])
}

func TestWriteSuccess_UnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(fallbackBody), rec.Body.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "validation", err: errors.Wrap(usecase.ErrInvalidInput, "names is required"), status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "unknown category", err: errors.Mark(player.ErrUnknownMetric, usecase.ErrInvalidInput), status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "not found", err: errors.Wrapf(usecase.ErrNotFound, "player=%s", "ghost"), status: http.StatusNotFound, reason: "notFound"},
		{name: "self match", err: errors.Mark(match.ErrSelfMatch, usecase.ErrConflict), status: http.StatusConflict, reason: "conflict"},
		{name: "dependency", err: errors.Wrap(usecase.ErrDependencyUnavailable, "redis"), status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{name: "storage", err: errors.New("connection reset"), status: http.StatusInternalServerError, reason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.status, got.HTTPStatus)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}
