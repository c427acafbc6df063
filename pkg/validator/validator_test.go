package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name     string `json:"name" validate:"required,min=2,max=10"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=100"`
	Kind     string `json:"kind" validate:"required,oneof=standard express"`
}

func TestValidate_OK(t *testing.T) {
	err := Validate(sampleInput{Name: "widget", Quantity: 3, Kind: "standard"})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	err := Validate(sampleInput{Name: "x", Quantity: 0, Kind: "teleport"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Contains(t, fields["Name"], "at least 2")
	assert.Contains(t, fields["Quantity"], "greater than or equal to 1")
	assert.Contains(t, fields["Kind"], "must be one of")
}

func TestValidate_RequiredMessage(t *testing.T) {
	err := Validate(sampleInput{Quantity: 1, Kind: "standard"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["Name"])
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"widget","quantity":2,"kind":"express"}`))

	var dst sampleInput
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "widget", dst.Name)

	bad := httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))
	err := DecodeAndValidate(bad, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
