package cache

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/platform/resilience"
	"golang.org/x/sync/singleflight"
)

// ReadThrough serves values from a Backend and falls back to the loader on a
// miss. Backend failures never fail the read: the breaker opens and callers go
// straight to the loader until the backend recovers.
type ReadThrough struct {
	backend Backend
	breaker *resilience.CircuitBreaker
	flight  singleflight.Group
	logger  *logging.Logger
}

func NewReadThrough(backend Backend, breaker *resilience.CircuitBreaker, logger *logging.Logger) *ReadThrough {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReadThrough{backend: backend, breaker: breaker, logger: logger}
}

// GetOrLoad decodes the cached value for key into T, or loads, stores and
// returns it. Concurrent misses on one key share a single load.
func GetOrLoad[T any](ctx context.Context, rt *ReadThrough, key string, load func(context.Context) (T, error)) (T, error) {
	if rt == nil || rt.backend == nil || key == "" {
		return load(ctx)
	}

	if cached, ok := rt.get(ctx, key); ok {
		var out T
		if err := sonic.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
		rt.logger.WarnContext(ctx, "drop undecodable cache entry", "key", key)
	}

	// The shared load outlives any single caller, so one disconnect cannot
	// fail the others waiting on the same key.
	loadCtx := context.WithoutCancel(ctx)
	ch := rt.flight.DoChan(key, func() (any, error) {
		loaded, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := sonic.Marshal(loaded)
		if err != nil {
			return nil, errors.Wrapf(err, "encode cache value %s", key)
		}
		rt.set(loadCtx, key, encoded)
		return loaded, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Invalidate drops every key under prefix. It runs after a commit, so the
// caller's cancellation does not stop it.
func (rt *ReadThrough) Invalidate(ctx context.Context, prefix string) {
	if rt == nil || rt.backend == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	err := rt.breaker.Execute(func() error {
		return rt.backend.DeletePrefix(ctx, prefix)
	})
	if err != nil {
		rt.logger.WarnContext(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
	}
}

func (rt *ReadThrough) get(ctx context.Context, key string) ([]byte, bool) {
	var (
		value []byte
		found bool
	)
	err := rt.breaker.Execute(func() error {
		var err error
		value, found, err = rt.backend.Get(ctx, key)
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			rt.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, found
}

func (rt *ReadThrough) set(ctx context.Context, key string, value []byte) {
	err := rt.breaker.Execute(func() error {
		return rt.backend.Set(ctx, key, value)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		rt.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
