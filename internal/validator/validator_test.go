package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordsRequest struct {
	Location  string   `json:"location" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,is-latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,is-longitude"`
	Status    string   `json:"status" validate:"omitempty,is-search-status"`
}

func ptr(f float64) *float64 { return &f }

func TestValidate_CustomRules(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&coordsRequest{Location: "Quai", Latitude: ptr(-90), Longitude: ptr(180), Status: "SHARED"}))
	require.NoError(t, v.Validate(&coordsRequest{Location: "Quai"}))

	err := v.Validate(&coordsRequest{Latitude: ptr(90.0001), Longitude: ptr(math.NaN()), Status: "DONE"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["location"])
	assert.Contains(t, vErr.Errors, "latitude")
	assert.Contains(t, vErr.Errors, "longitude")
	assert.Contains(t, vErr.Errors, "status")
	assert.Contains(t, vErr.Error(), "field 'latitude'")
}
