// Package upstream provides typed fetch wrappers for every storefront API
// resource the BFF consumes. Each wrapper builds a request descriptor and
// initiates a cancellable single-outcome fetch; consumers subscribe for the
// value or failure reason and cancel when superseded.
package upstream

import (
	"github.com/utafrali/shopfront/internal/remote"
	"github.com/utafrali/shopfront/pkg/httpclient"
)

// Client fronts the remote storefront API.
type Client struct {
	transport remote.Transport
}

// New creates an upstream client. The credential is a service-level bearer
// token attached only to credentialed descriptors (sign-in, cart snapshot).
func New(doer httpclient.Doer, baseURL, credential string) *Client {
	return &Client{
		transport: remote.Transport{
			Client:     doer,
			BaseURL:    baseURL,
			Credential: credential,
		},
	}
}
