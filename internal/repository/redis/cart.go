package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/shopfront/internal/domain"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const keyPrefix = "shopfront:cart:"

// CartSessions implements repository.CartSessions using Redis.
type CartSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartSessions creates a Redis-backed cart session store.
func NewCartSessions(client *redis.Client, ttl time.Duration) *CartSessions {
	return &CartSessions{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a user's session cart from Redis.
func (r *CartSessions) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists a cart to Redis with the session TTL.
func (r *CartSessions) Save(ctx context.Context, cart *domain.Cart) error {
	key := keyPrefix + cart.UserID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// SaveIfVersion persists the cart only if the stored version still matches
// expectedVersion, using WATCH for optimistic concurrency. The cart's
// version is bumped on success.
func (r *CartSessions) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	key := keyPrefix + cart.UserID
	conflict := false

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var stored domain.Cart
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("unmarshal stored cart: %w", err)
			}
			if stored.Version != expectedVersion {
				conflict = true
				return nil
			}
		case errors.Is(err, redis.Nil):
			if expectedVersion != 0 {
				conflict = true
				return nil
			}
		default:
			return fmt.Errorf("redis get cart: %w", err)
		}

		cart.Version = expectedVersion + 1
		payload, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Another writer touched the key between WATCH and EXEC.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// Delete removes a user's session cart from Redis.
func (r *CartSessions) Delete(ctx context.Context, userID string) error {
	key := keyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
