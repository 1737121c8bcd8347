package domain

import (
	"encoding/json"
	"fmt"
)

// RawRow is one undecoded row from the request envelope: the row ID followed
// by operation-specific cells. Cells stay as raw JSON until the operation is
// known, at which point Bind* validates shape and types.
type RawRow []json.RawMessage

// GeocodeRow is a bound forward-geocode input row.
type GeocodeRow struct {
	ID      json.RawMessage
	Address string
}

// ReverseGeocodeRow is a bound reverse-geocode input row.
type ReverseGeocodeRow struct {
	ID  json.RawMessage
	Lon float64
	Lat float64
}

// ResultRow is one encoded output tuple: [id, lon, lat] or [id, label].
// The ID cell is the caller's json.RawMessage, so it round-trips unchanged.
type ResultRow []any

// BindGeocodeRows validates and types raw rows for the geocode operation.
// Each row must be [id, address].
func BindGeocodeRows(rows []RawRow) ([]GeocodeRow, error) {
	bound := make([]GeocodeRow, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: row %d has %d cells, want 2 (id, address)", ErrInvalidBody, i, len(row))
		}
		var address string
		if err := json.Unmarshal(row[1], &address); err != nil {
			return nil, fmt.Errorf("%w: row %d: address must be a string", ErrInvalidBody, i)
		}
		bound = append(bound, GeocodeRow{ID: row[0], Address: address})
	}
	return bound, nil
}

// BindReverseGeocodeRows validates and types raw rows for the reverse-geocode
// operation. Each row must be [id, longitude, latitude].
func BindReverseGeocodeRows(rows []RawRow) ([]ReverseGeocodeRow, error) {
	bound := make([]ReverseGeocodeRow, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: row %d has %d cells, want 3 (id, longitude, latitude)", ErrInvalidBody, i, len(row))
		}
		var lon, lat float64
		if err := json.Unmarshal(row[1], &lon); err != nil {
			return nil, fmt.Errorf("%w: row %d: longitude must be a number", ErrInvalidBody, i)
		}
		if err := json.Unmarshal(row[2], &lat); err != nil {
			return nil, fmt.Errorf("%w: row %d: latitude must be a number", ErrInvalidBody, i)
		}
		bound = append(bound, ReverseGeocodeRow{ID: row[0], Lon: lon, Lat: lat})
	}
	return bound, nil
}
