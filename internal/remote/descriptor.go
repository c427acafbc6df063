package remote

import (
	"fmt"
	"net/http"
	"strings"
)

// Descriptor describes one upstream operation: target path, method, optional
// JSON body, and whether the session credential should be attached. It is
// immutable once constructed; the With* methods return copies.
type Descriptor struct {
	method          string
	path            string
	body            any
	withCredentials bool
}

// NewDescriptor creates a descriptor for the given method and path.
// The method must be a known HTTP method and the path must be non-empty.
func NewDescriptor(method, path string) (Descriptor, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return Descriptor{}, fmt.Errorf("descriptor: unsupported method %q", method)
	}
	if strings.TrimSpace(path) == "" {
		return Descriptor{}, fmt.Errorf("descriptor: empty path")
	}
	return Descriptor{method: method, path: path}, nil
}

// MustDescriptor is NewDescriptor that panics on invalid input. Intended for
// statically known endpoint definitions.
func MustDescriptor(method, path string) Descriptor {
	d, err := NewDescriptor(method, path)
	if err != nil {
		panic(err)
	}
	return d
}

// WithBody returns a copy of the descriptor carrying a JSON-serializable
// request body.
func (d Descriptor) WithBody(body any) Descriptor {
	d.body = body
	return d
}

// WithCredentials returns a copy of the descriptor flagged to attach the
// session credential to the upstream request.
func (d Descriptor) WithCredentials() Descriptor {
	d.withCredentials = true
	return d
}

// Method returns the HTTP method.
func (d Descriptor) Method() string { return d.method }

// Path returns the target path relative to the upstream base URL.
func (d Descriptor) Path() string { return d.path }

// Body returns the request body, or nil.
func (d Descriptor) Body() any { return d.body }

// IncludesCredentials reports whether the session credential is attached.
func (d Descriptor) IncludesCredentials() bool { return d.withCredentials }
