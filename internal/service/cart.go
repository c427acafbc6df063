package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository"
	"github.com/utafrali/shopfront/internal/upstream"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line.
	MaxQuantityPerItem = 100
	// MaxLinesPerCart is the maximum number of distinct lines in a cart.
	MaxLinesPerCart = 50
	// MaxPriceCents is the maximum unit price in cents (100,000.00).
	MaxPriceCents = 100_000_00
)

// DefaultCurrency is used for carts created before an upstream snapshot
// declares one.
const DefaultCurrency = "USD"

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	ImageURL  string `json:"image_url"`
}

// CartService implements the business logic for cart operations: it keeps
// the in-memory aggregate consistent, snapshots it to the session store, and
// publishes activity events.
type CartService struct {
	sessions repository.CartSessions
	upstream *upstream.Client
	producer *event.Producer
	logger   *slog.Logger
	cartTTL  time.Duration
}

// NewCartService creates a cart service.
func NewCartService(sessions repository.CartSessions, up *upstream.Client, producer *event.Producer, logger *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		sessions: sessions,
		upstream: up,
		producer: producer,
		logger:   logger,
		cartTTL:  cartTTL,
	}
}

// GetCart retrieves the session cart for a user. On a session miss the cart
// is seeded once from the upstream snapshot; an empty snapshot yields an
// empty cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.seedCart(ctx, userID)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// seedCart builds a fresh session cart from the upstream snapshot and stores
// it. The snapshot replaces state entirely; it never merges.
func (s *CartService) seedCart(ctx context.Context, userID string) (*domain.Cart, error) {
	snap, err := await(ctx, s.upstream.Cart(ctx, userID))
	if err != nil {
		return nil, fmt.Errorf("seed cart: %w", err)
	}

	currency := snap.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now().UTC()
	cart := domain.NewCart(uuid.New().String(), userID, currency, now, s.cartTTL)
	cart.Seed(snap.Items)

	if err := s.sessions.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save seeded cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart seeded from upstream snapshot",
		slog.String("user_id", userID),
		slog.Int("lines", cart.Len()),
	)

	return cart, nil
}

// AddItem adds quantity units of an item to the user's cart, merging with an
// existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Price > MaxPriceCents {
		return nil, apperrors.InvalidInput(fmt.Sprintf("price must not exceed %d cents", MaxPriceCents))
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	expectedVersion := cart.Version

	newQty := cart.Quantity(input.ProductID) + input.Quantity
	if newQty > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
	}
	if cart.Quantity(input.ProductID) == 0 && cart.Len() >= MaxLinesPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxLinesPerCart))
	}

	cart.SetLine(domain.LineItem{
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		Quantity:  newQty,
		ImageURL:  input.ImageURL,
	})

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateItemQuantity replaces the quantity of a cart line. Quantity 0
// removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for update: %w", err)
	}

	expectedVersion := cart.Version

	if !cart.SetQuantity(productID, quantity) {
		return nil, apperrors.NotFound("cart item", productID)
	}

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes a line from the cart. Removing an absent line is a
// no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	expectedVersion := cart.Version

	cart.RemoveLine(productID)

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "line removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return cart, nil
}

// ClearCart removes the user's session cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// saveAndPublish snapshots the cart with optimistic locking and publishes a
// cart.updated event. Publish failures are logged, not returned.
func (s *CartService) saveAndPublish(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	ok, err := s.sessions.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
