package remote

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor_Validates(t *testing.T) {
	_, err := NewDescriptor("FETCH", "/api/widgets")
	assert.Error(t, err)

	_, err = NewDescriptor(http.MethodGet, "")
	assert.Error(t, err)

	d, err := NewDescriptor(http.MethodGet, "/api/widgets")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, d.Method())
	assert.Equal(t, "/api/widgets", d.Path())
	assert.False(t, d.IncludesCredentials())
	assert.Nil(t, d.Body())
}

func TestDescriptor_WithBodyAndCredentialsReturnsCopies(t *testing.T) {
	base := MustDescriptor(http.MethodPost, "/api/widgets")

	withBody := base.WithBody(map[string]int{"qty": 2})
	withCreds := withBody.WithCredentials()

	assert.Nil(t, base.Body(), "base descriptor must not be mutated")
	assert.False(t, withBody.IncludesCredentials())
	assert.NotNil(t, withCreds.Body())
	assert.True(t, withCreds.IncludesCredentials())
}

func TestMustDescriptor_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustDescriptor("", "/x") })
}
