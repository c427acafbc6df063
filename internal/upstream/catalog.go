package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/remote"
)

// Products fetches the product list.
func (c *Client) Products(ctx context.Context) *remote.Resource[[]domain.Product] {
	d := remote.MustDescriptor(http.MethodGet, "/api/products")
	return remote.Initiate[[]domain.Product](ctx, c.transport, d, "products")
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, productID string) *remote.Resource[domain.Product] {
	d := remote.MustDescriptor(http.MethodGet, "/api/products/"+url.PathEscape(productID))
	return remote.Initiate[domain.Product](ctx, c.transport, d, "product")
}

// Reviews fetches the reviews for a product.
func (c *Client) Reviews(ctx context.Context, productID string) *remote.Resource[[]domain.Review] {
	d := remote.MustDescriptor(http.MethodGet, "/api/products/"+url.PathEscape(productID)+"/reviews")
	return remote.Initiate[[]domain.Review](ctx, c.transport, d, "reviews")
}

// ReviewInput is the payload for submitting a product review.
type ReviewInput struct {
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// SubmitReview posts a review for a product.
func (c *Client) SubmitReview(ctx context.Context, productID string, input ReviewInput) *remote.Resource[domain.Review] {
	d := remote.MustDescriptor(http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/reviews").
		WithBody(input).
		WithCredentials()
	return remote.Initiate[domain.Review](ctx, c.transport, d, "review")
}
