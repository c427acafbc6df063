// Package remote implements the single-outcome fetch contract used for every
// call to the upstream storefront API: initiate one exchange, receive exactly
// one value or one failure reason, and cancel to suppress a late delivery.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/utafrali/shopfront/pkg/httpclient"
)

// maxResponseBytes bounds how much of an upstream response body is read.
const maxResponseBytes = 4 << 20

// State is the lifecycle state of a Resource.
type State int

const (
	// Pending means no terminal outcome has been reached yet.
	Pending State = iota
	// Fulfilled means the fetch succeeded and a value was produced.
	Fulfilled
	// Rejected means the fetch failed with a reason.
	Rejected
)

// Transport carries everything needed to reach the upstream API. The
// credential is attached only to descriptors that opt in.
type Transport struct {
	Client     httpclient.Doer
	BaseURL    string
	Credential string
}

// Resource is the handle for one outstanding or completed fetch yielding a
// value of type T. It reaches at most one terminal state; a new operation
// requires a new Resource. Racing requests for the same logical resource are
// independent instances — the consumer cancels the superseded one.
type Resource[T any] struct {
	mu        sync.Mutex
	state     State
	value     T
	reason    string
	cancelled bool
	delivered bool
	onValue   func(T)
	onError   func(string)
	abort     context.CancelFunc
}

// Subscription detaches a subscriber from its resource.
type Subscription struct {
	cancel func()
}

// Unsubscribe cancels the underlying resource. Safe to call multiple times
// and after completion.
func (s *Subscription) Unsubscribe() {
	s.cancel()
}

// Initiate begins the upstream exchange described by desc and returns a
// pending handle synchronously. Exactly one network call is issued per
// invocation; the contract does not retry. The envelope's results entry
// under resourceKey is decoded into T (a missing entry fulfills with the
// zero value).
func Initiate[T any](ctx context.Context, t Transport, desc Descriptor, resourceKey string) *Resource[T] {
	r := &Resource[T]{}

	fetchCtx, abort := context.WithCancel(ctx)
	r.abort = abort

	go func() {
		defer abort()
		r.fetch(fetchCtx, t, desc, resourceKey)
	}()

	return r
}

// Subscribe registers the completion callbacks. onValue receives the decoded
// payload at most once, or onError receives a human-readable reason at most
// once — never both, never more than once total. If the resource is already
// terminal the matching callback fires immediately. Subscribing again
// replaces the callbacks and never re-issues the network call.
func (r *Resource[T]) Subscribe(onValue func(T), onError func(string)) *Subscription {
	r.mu.Lock()
	r.onValue = onValue
	r.onError = onError

	deliver := r.state != Pending && !r.cancelled && !r.delivered
	if deliver {
		r.delivered = true
	}
	state, value, reason := r.state, r.value, r.reason
	r.mu.Unlock()

	if deliver {
		switch state {
		case Fulfilled:
			if onValue != nil {
				onValue(value)
			}
		case Rejected:
			if onError != nil {
				onError(reason)
			}
		}
	}

	return &Subscription{cancel: r.Cancel}
}

// Cancel detaches the callbacks so a late completion produces no observable
// effect, and aborts the in-flight exchange best-effort. Idempotent and safe
// after completion. It does not undo a delivery that already happened.
func (r *Resource[T]) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.onValue = nil
	r.onError = nil
	abort := r.abort
	r.mu.Unlock()

	if abort != nil {
		abort()
	}
}

// State returns the current lifecycle state.
func (r *Resource[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// fetch runs the exchange and settles the resource.
func (r *Resource[T]) fetch(ctx context.Context, t Transport, desc Descriptor, resourceKey string) {
	req, err := buildRequest(ctx, t, desc)
	if err != nil {
		r.reject(err.Error())
		return
	}

	resp, err := t.Client.Do(ctx, req)
	if err != nil {
		// Transport-level failure: connection refused, DNS, cancelled ctx.
		r.reject(err.Error())
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		r.reject(err.Error())
		return
	}

	payload, reason, ok := decodeEnvelope(resp.StatusCode, body, resourceKey)
	if !ok {
		r.reject(reason)
		return
	}

	var value T
	if payload != nil {
		if err := json.Unmarshal(payload, &value); err != nil {
			r.reject(unknownErrorReason)
			return
		}
	}
	r.fulfill(value)
}

// fulfill transitions to Fulfilled and delivers if a subscriber is attached.
// A completion arriving after a terminal state or after cancellation is
// ignored.
func (r *Resource[T]) fulfill(value T) {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return
	}
	r.state = Fulfilled
	r.value = value

	cb := r.onValue
	deliver := cb != nil && !r.cancelled && !r.delivered
	if deliver {
		r.delivered = true
	}
	r.mu.Unlock()

	if deliver {
		cb(value)
	}
}

// reject transitions to Rejected and delivers if a subscriber is attached.
func (r *Resource[T]) reject(reason string) {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return
	}
	r.state = Rejected
	r.reason = reason

	cb := r.onError
	deliver := cb != nil && !r.cancelled && !r.delivered
	if deliver {
		r.delivered = true
	}
	r.mu.Unlock()

	if deliver {
		cb(reason)
	}
}

// buildRequest constructs the upstream HTTP request from a descriptor.
func buildRequest(ctx context.Context, t Transport, desc Descriptor) (*http.Request, error) {
	url := strings.TrimSuffix(t.BaseURL, "/") + "/" + strings.TrimPrefix(desc.Path(), "/")

	var bodyReader io.Reader = http.NoBody
	if desc.Body() != nil {
		data, err := json.Marshal(desc.Body())
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method(), url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if desc.Body() != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if desc.IncludesCredentials() && t.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+t.Credential)
	}

	return req, nil
}
