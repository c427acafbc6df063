package repository

import (
	"context"

	"github.com/utafrali/shopfront/internal/domain"
)

// CartSessions defines the session-store interface for cart state. Carts are
// keyed by the signed-in user's ID and expire with the session TTL.
type CartSessions interface {
	// Get retrieves the cart for a user.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing session cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists a cart only if the stored version still equals
	// expectedVersion, incrementing the version on success. Returns false
	// without error on a version conflict.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a user's session cart.
	Delete(ctx context.Context, userID string) error
}
