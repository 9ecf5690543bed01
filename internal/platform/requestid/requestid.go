package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header carries the request id between clients, proxies and this service.
const Header = "X-Request-ID"

const maxLength = 128

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

// Sanitize returns the caller supplied id when usable, otherwise a fresh one.
func Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxLength {
		return New()
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return raw
}

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
