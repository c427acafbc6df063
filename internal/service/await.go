package service

import (
	"context"
	"strings"

	"github.com/utafrali/shopfront/internal/remote"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httpclient"
)

// outcome carries one resource settlement through a channel.
type outcome[T any] struct {
	value  T
	reason string
	failed bool
}

// await bridges a single-outcome resource into a synchronous call: it
// subscribes, waits for the terminal callback, and cancels the resource if
// the context expires first so the late delivery is suppressed.
func await[T any](ctx context.Context, res *remote.Resource[T]) (T, error) {
	ch := make(chan outcome[T], 1)

	res.Subscribe(
		func(v T) { ch <- outcome[T]{value: v} },
		func(reason string) { ch <- outcome[T]{reason: reason, failed: true} },
	)

	select {
	case o := <-ch:
		if o.failed {
			var zero T
			return zero, upstreamError(o.reason)
		}
		return o.value, nil
	case <-ctx.Done():
		res.Cancel()
		var zero T
		return zero, ctx.Err()
	}
}

// upstreamError converts a resource failure reason into an application
// error. A rejection caused by the open circuit breaker means the upstream
// is being shed, not that it answered badly, so it maps to 503 rather
// than 502.
func upstreamError(reason string) error {
	if strings.Contains(reason, httpclient.ErrCircuitOpen.Error()) {
		return apperrors.UpstreamUnavailable(reason)
	}
	return apperrors.BadGateway(reason)
}
