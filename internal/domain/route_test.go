package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOperation(t *testing.T) {
	tests := []struct {
		name string
		want Operation
	}{
		{"geocode_x", OpGeocode},
		{"geocode_amazon_location_service_provider_here", OpGeocode},
		{"GEOCODE_UPPER", OpGeocode},
		{"reverse_geocode_x", OpReverseGeocode},
		{"Reverse_Geocode_Amazon_Location_Service_Provider_Esri", OpReverseGeocode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := ClassifyOperation(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestClassifyOperation_Unrecognized(t *testing.T) {
	for _, name := range []string{"foo", "", "lookup_geocode"} {
		t.Run(name, func(t *testing.T) {
			_, err := ClassifyOperation(name)
			require.ErrorIs(t, err, ErrUnrecognizedOperation)
		})
	}
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name string
		want Provider
	}{
		{"geocode_amazon_location_service_provider_here", ProviderHere},
		{"reverse_geocode_amazon_location_service_provider_esri", ProviderEsri},
		{"geocode_amazon_location_service_provider_grab", ProviderGrab},
		{"anything_HERE", ProviderHere},
		{"anything_ESRI", ProviderEsri},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ResolveProvider(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestResolveProvider_Unknown(t *testing.T) {
	for _, name := range []string{"geocode_provider_xyz", "", "here_but_not_suffix_x"} {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveProvider(name)
			require.ErrorIs(t, err, ErrUnknownProvider)
		})
	}
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "geocode", OpGeocode.String())
	assert.Equal(t, "reverse_geocode", OpReverseGeocode.String())
	assert.Equal(t, "unknown", OpUnknown.String())
}
