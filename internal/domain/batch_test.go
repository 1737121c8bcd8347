package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGeocoder returns canned places per call, optionally failing on a
// specific call number.
type scriptedGeocoder struct {
	calls      int
	failOnCall int // 1-based; 0 disables
	place      Place
}

func (g *scriptedGeocoder) ForwardGeocode(_ context.Context, _, _ string) (Place, error) {
	return g.next()
}

func (g *scriptedGeocoder) ReverseGeocode(_ context.Context, _ string, _, _ float64) (Place, error) {
	return g.next()
}

func (g *scriptedGeocoder) next() (Place, error) {
	g.calls++
	if g.failOnCall != 0 && g.calls == g.failOnCall {
		return Place{}, errors.New("backend unavailable")
	}
	return g.place, nil
}

func TestGeocodeBatch_PreservesOrderAndIDs(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Lon: 13.4, Lat: 52.52, Found: true}}

	var rows []GeocodeRow
	for i := 0; i < 5; i++ {
		rows = append(rows, GeocodeRow{
			ID:      json.RawMessage(fmt.Sprintf("%d", i)),
			Address: fmt.Sprintf("address %d", i),
		})
	}

	results, err := GeocodeBatch(context.Background(), rows, gc, "idx")
	require.NoError(t, err)
	require.Len(t, results, len(rows))
	for i, res := range results {
		assert.Equal(t, rows[i].ID, res[0], "row %d id", i)
		assert.Equal(t, 13.4, res[1])
		assert.Equal(t, 52.52, res[2])
	}
}

func TestGeocodeBatch_NoMatchSentinel(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Found: false}}

	results, err := GeocodeBatch(context.Background(), []GeocodeRow{
		{ID: json.RawMessage(`1`), Address: "nowhere"},
	}, gc, "idx")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ResultRow{json.RawMessage(`1`), float64(-1), float64(-1)}, results[0])
}

func TestReverseGeocodeBatch_NoMatchSentinel(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Found: false}}

	results, err := ReverseGeocodeBatch(context.Background(), []ReverseGeocodeRow{
		{ID: json.RawMessage(`1`), Lon: 0, Lat: 0},
	}, gc, "idx")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ResultRow{json.RawMessage(`1`), "N/A"}, results[0])
}

func TestReverseGeocodeBatch_Label(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Label: "Alexanderplatz, Berlin", Found: true}}

	results, err := ReverseGeocodeBatch(context.Background(), []ReverseGeocodeRow{
		{ID: json.RawMessage(`7`), Lon: 13.4, Lat: 52.52},
	}, gc, "idx")
	require.NoError(t, err)
	assert.Equal(t, ResultRow{json.RawMessage(`7`), "Alexanderplatz, Berlin"}, results[0])
}

func TestGeocodeBatch_FailFast(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Lon: 1, Lat: 2, Found: true}, failOnCall: 2}

	rows := []GeocodeRow{
		{ID: json.RawMessage(`1`), Address: "a"},
		{ID: json.RawMessage(`2`), Address: "b"},
		{ID: json.RawMessage(`3`), Address: "c"},
	}

	results, err := GeocodeBatch(context.Background(), rows, gc, "idx")
	require.Error(t, err)
	assert.Nil(t, results, "no partial output on failure")
	assert.Contains(t, err.Error(), "row 1")
	assert.Equal(t, 2, gc.calls, "row 3 never runs")
}

func TestProcessBatch_BindsByOperation(t *testing.T) {
	gc := &scriptedGeocoder{place: Place{Label: "somewhere", Found: true}}

	results, err := ProcessBatch(context.Background(), OpReverseGeocode, []RawRow{
		rawRow(`1`, `13.40`, `52.52`),
	}, gc, "idx")
	require.NoError(t, err)
	assert.Equal(t, ResultRow{json.RawMessage(`1`), "somewhere"}, results[0])

	// Geocode-shaped rows under the reverse operation fail validation.
	_, err = ProcessBatch(context.Background(), OpReverseGeocode, []RawRow{
		rawRow(`1`, `"an address"`),
	}, gc, "idx")
	require.ErrorIs(t, err, ErrInvalidBody)
}

func TestProcessBatch_UnknownOperation(t *testing.T) {
	_, err := ProcessBatch(context.Background(), OpUnknown, nil, &scriptedGeocoder{}, "idx")
	require.ErrorIs(t, err, ErrUnrecognizedOperation)
}
