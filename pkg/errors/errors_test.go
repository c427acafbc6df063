package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	assert.ErrorIs(t, NotFound("cart", "u1"), ErrNotFound)
	assert.ErrorIs(t, InvalidInput("bad quantity"), ErrInvalidInput)
	assert.ErrorIs(t, Unauthorized("no token"), ErrUnauthorized)
	assert.ErrorIs(t, Forbidden("admins only"), ErrForbidden)
	assert.ErrorIs(t, Conflict("version mismatch"), ErrConflict)
	assert.ErrorIs(t, BadGateway("upstream said no"), ErrUpstreamFailed)
	assert.ErrorIs(t, UpstreamUnavailable("breaker open"), ErrUpstreamUnavail)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("cart", "u1")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("nope")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("stale")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(BadGateway("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("anything else")))
}

func TestHTTPStatus_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get cart: %w", NotFound("cart", "u1"))

	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestAppError_MessageInError(t *testing.T) {
	err := InvalidInput("quantity must be positive")

	assert.Contains(t, err.Error(), "INVALID_INPUT")
	assert.Contains(t, err.Error(), "quantity must be positive")
}
