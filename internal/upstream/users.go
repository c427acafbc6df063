package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/remote"
)

// User fetches a user profile by ID.
func (c *Client) User(ctx context.Context, userID string) *remote.Resource[domain.User] {
	d := remote.MustDescriptor(http.MethodGet, "/api/users/"+url.PathEscape(userID))
	return remote.Initiate[domain.User](ctx, c.transport, d, "user")
}

// Credentials is the sign-in payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a session with the upstream identity
// endpoint.
func (c *Client) SignIn(ctx context.Context, creds Credentials) *remote.Resource[domain.Session] {
	d := remote.MustDescriptor(http.MethodPost, "/api/auth/signin").
		WithBody(creds).
		WithCredentials()
	return remote.Initiate[domain.Session](ctx, c.transport, d, "session")
}
