package domain

import "context"

// Place is the single best match returned by a geocoding backend lookup.
// Found is false when the backend returned no match; that is a valid outcome,
// not an error.
type Place struct {
	Lon   float64
	Lat   float64
	Label string
	Found bool
}

// Geocoder performs per-row lookups against one provider's place index.
type Geocoder interface {
	// ForwardGeocode converts free-text address to coordinates.
	ForwardGeocode(ctx context.Context, indexID, address string) (Place, error)

	// ReverseGeocode converts coordinates to a place label.
	ReverseGeocode(ctx context.Context, indexID string, lon, lat float64) (Place, error)
}
