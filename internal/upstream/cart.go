package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/remote"
)

// CartSnapshot is the server-side cart state used to seed a session cart.
type CartSnapshot struct {
	Currency string            `json:"currency"`
	Items    []domain.LineItem `json:"items"`
}

// Cart fetches the persisted cart snapshot for a user.
func (c *Client) Cart(ctx context.Context, userID string) *remote.Resource[CartSnapshot] {
	d := remote.MustDescriptor(http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/cart").
		WithCredentials()
	return remote.Initiate[CartSnapshot](ctx, c.transport, d, "cart")
}
