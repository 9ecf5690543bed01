package httpapi

import (
	"context"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	apiVersion  = "2.0"
	errorDomain = "scutta-ladder"

	internalErrorMessage = "internal server error"
)

// envelope follows the Google JSON style guide: exactly one of data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Status  string        `json:"status"`
	Errors  []errorDetail `json:"errors,omitempty"`
}

type errorDetail struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	sentinel   error
	HTTPStatus int
	Reason     string
	Status     string
}

var (
	errorClasses = []errorClass{
		{sentinel: usecase.ErrInvalidInput, HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
		{sentinel: usecase.ErrNotFound, HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
		{sentinel: usecase.ErrConflict, HTTPStatus: http.StatusConflict, Reason: "conflict", Status: "ALREADY_EXISTS"},
		{sentinel: usecase.ErrDependencyUnavailable, HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
	}
	internalClass = errorClass{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

	// fallbackBody is written when the payload itself cannot be encoded.
	fallbackBody = []byte(`{"apiVersion":"2.0","error":{"code":500,"message":"internal server error","status":"INTERNAL"}}` + "\n")
)

// classify returns the first class whose sentinel err is marked with.
// Anything unclassified is internal.
func classify(err error) errorClass {
	for _, c := range errorClasses {
		if errors.Is(err, c.sentinel) {
			return c
		}
	}
	return internalClass
}

var responseBuffers bytebufferpool.Pool

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	buf := responseBuffers.Get()
	defer responseBuffers.Put(buf)

	body := fallbackBody
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err == nil {
		body = buf.B
	} else {
		status = http.StatusInternalServerError
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError renders err under its class. Internal failures never echo the
// underlying message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classify(err)
	markSpanError(ctx, class.HTTPStatus, err)

	message := internalErrorMessage
	if class.HTTPStatus != http.StatusInternalServerError {
		message = err.Error()
	}
	writeClass(w, class, message)
}

func writeInternalError(w http.ResponseWriter) {
	writeClass(w, internalClass, internalErrorMessage)
}

func writeClass(w http.ResponseWriter, class errorClass, message string) {
	writeJSON(w, class.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.HTTPStatus,
			Message: message,
			Status:  class.Status,
			Errors:  []errorDetail{{Domain: errorDomain, Reason: class.Reason, Message: message}},
		},
	})
}
