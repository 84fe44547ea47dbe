package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"vetlab/internal/hostapi"
	"vetlab/internal/metrics"
	"vetlab/internal/repository"
)

// chain tries each delegate that implements the operation, in order, and
// falls back to the local repository. Delegate errors, null answers and empty
// results all mean "unavailable", never a hard failure. The local answer is
// final.
type chain struct {
	delegates []repository.Provider
	logger    *slog.Logger
}

func newChain(logger *slog.Logger, delegates []repository.Provider) *chain {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]repository.Provider, 0, len(delegates))
	for _, d := range delegates {
		if d != nil {
			kept = append(kept, d)
		}
	}
	return &chain{delegates: kept, logger: logger}
}

// run calls fn on the first provider implementing I that yields a result.
func run[I any, T any](ctx context.Context, c *chain, local I, method string, fn func(I) (T, error)) (T, error) {
	for _, d := range c.delegates {
		impl, ok := d.(I)
		if !ok {
			continue
		}
		v, err := fn(impl)
		switch {
		case errors.Is(err, hostapi.ErrNullResult):
			metrics.DelegateFallbacks.WithLabelValues(d.Name(), method, "empty").Inc()
		case err != nil:
			reason := "error"
			if errors.Is(err, hostapi.ErrUnavailable) {
				reason = "unavailable"
				c.logger.Debug("delegate lacks method", "provider", d.Name(), "method", method)
			} else if ctx.Err() == nil {
				c.logger.Warn("delegate failed, falling back", "provider", d.Name(), "method", method, "error", err)
			}
			metrics.DelegateFallbacks.WithLabelValues(d.Name(), method, reason).Inc()
		case !present(v):
			metrics.DelegateFallbacks.WithLabelValues(d.Name(), method, "empty").Inc()
		default:
			metrics.ProviderCalls.WithLabelValues(d.Name(), method).Inc()
			return v, nil
		}
	}
	metrics.ProviderCalls.WithLabelValues("local", method).Inc()
	return fn(local)
}

// present reports whether v carries a result. Nil references and empty
// strings do not.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return !rv.IsNil()
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}
