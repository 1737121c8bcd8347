package domain

import (
	"context"
	"fmt"
)

// No-match sentinels per the external-function contract.
const (
	noMatchCoordinate = float64(-1)
	noMatchLabel      = "N/A"
)

// ProcessBatch binds the raw rows for the given operation and dispatches them
// through the geocoder against the resolved place index. Rows are processed
// strictly sequentially; output row i corresponds to input row i and carries
// the same ID. The first backend failure aborts the whole batch.
func ProcessBatch(ctx context.Context, op Operation, rows []RawRow, geocoder Geocoder, indexID string) ([]ResultRow, error) {
	switch op {
	case OpGeocode:
		bound, err := BindGeocodeRows(rows)
		if err != nil {
			return nil, err
		}
		return GeocodeBatch(ctx, bound, geocoder, indexID)
	case OpReverseGeocode:
		bound, err := BindReverseGeocodeRows(rows)
		if err != nil {
			return nil, err
		}
		return ReverseGeocodeBatch(ctx, bound, geocoder, indexID)
	}
	return nil, fmt.Errorf("%w: operation %d", ErrUnrecognizedOperation, op)
}

// GeocodeBatch looks up coordinates for each address row. No match yields the
// (-1, -1) sentinel pair.
func GeocodeBatch(ctx context.Context, rows []GeocodeRow, geocoder Geocoder, indexID string) ([]ResultRow, error) {
	results := make([]ResultRow, 0, len(rows))
	for i, row := range rows {
		place, err := geocoder.ForwardGeocode(ctx, indexID, row.Address)
		if err != nil {
			return nil, fmt.Errorf("row %d: forward geocode: %w", i, err)
		}
		if !place.Found {
			results = append(results, ResultRow{row.ID, noMatchCoordinate, noMatchCoordinate})
			continue
		}
		results = append(results, ResultRow{row.ID, place.Lon, place.Lat})
	}
	return results, nil
}

// ReverseGeocodeBatch looks up a place label for each coordinate row. No
// match yields the "N/A" sentinel.
func ReverseGeocodeBatch(ctx context.Context, rows []ReverseGeocodeRow, geocoder Geocoder, indexID string) ([]ResultRow, error) {
	results := make([]ResultRow, 0, len(rows))
	for i, row := range rows {
		place, err := geocoder.ReverseGeocode(ctx, indexID, row.Lon, row.Lat)
		if err != nil {
			return nil, fmt.Errorf("row %d: reverse geocode: %w", i, err)
		}
		if !place.Found {
			results = append(results, ResultRow{row.ID, noMatchLabel})
			continue
		}
		results = append(results, ResultRow{row.ID, place.Label})
	}
	return results, nil
}
