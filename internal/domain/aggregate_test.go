package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAggregate(t *testing.T) {
	lund := Coordinates{Lat: 55.7, Lon: 13.2}
	rows := []VolunteerZip{
		{Zipcode: "22100", City: "Lund", Count: 1, Coordinates: lund},
		{Zipcode: "98100", City: "Kiruna", Count: 1, Coordinates: Coordinates{Lat: 67.8, Lon: 20.2}},
		{Zipcode: "22100", City: "Lund", Count: 1, Coordinates: lund},
		{Zipcode: "22100", City: "Lund", Count: 3, Coordinates: Coordinates{Lat: 55.71, Lon: 13.19}},
	}

	agg, err := BuildAggregate(rows)
	require.NoError(t, err)

	assert.Equal(t, 6, agg.Total)
	assert.Equal(t, 2, agg.Count)
	require.Len(t, agg.Locations, 2)
	assert.Equal(t, "Lund", agg.Locations[0].City)
	assert.Equal(t, "Kiruna", agg.Locations[1].City)

	require.Len(t, agg.Locations[0].Data, 2)
	assert.Equal(t, 2, agg.Locations[0].Data[0].Count, "rows at the same point merge")
	assert.Equal(t, 3, agg.Locations[0].Data[1].Count)
	assert.Equal(t, agg.Total, agg.VolunteerSum())
	assert.NoError(t, agg.Validate())
}

func TestBuildAggregate_Empty(t *testing.T) {
	agg, err := BuildAggregate(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Total)
	assert.Empty(t, agg.Locations)
}

func TestBuildAggregate_RejectsBadRows(t *testing.T) {
	_, err := BuildAggregate([]VolunteerZip{{Zipcode: "1", Count: 1, Coordinates: Coordinates{Lat: 100}}})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = BuildAggregate([]VolunteerZip{{Zipcode: "1", Count: -1}})
	assert.ErrorIs(t, err, ErrNegativeCount)
}

type stubGeocoder struct {
	results map[string]GeocodingResult
	err     error
	queries []string
}

func (s *stubGeocoder) ForwardGeocode(_ context.Context, query, _ string) (GeocodingResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return GeocodingResult{}, s.err
	}
	return s.results[query], nil
}

func TestGeocodeMissing(t *testing.T) {
	geo := &stubGeocoder{results: map[string]GeocodingResult{
		"98100 Kiruna": {Lat: 67.8, Lon: 20.2},
	}}
	rows := []VolunteerZip{
		{Zipcode: "22100", City: "Lund", Count: 1, Coordinates: Coordinates{Lat: 55.7, Lon: 13.2}},
		{Zipcode: "98100", City: "Kiruna", Count: 1},
		{Zipcode: "00000", City: "Atlantis", Count: 1},
	}

	out := GeocodeMissing(context.Background(), rows, geo, "se", discardLogger())

	assert.Equal(t, []string{"98100 Kiruna", "00000 Atlantis"}, geo.queries)
	assert.Equal(t, Coordinates{Lat: 67.8, Lon: 20.2}, out[1].Coordinates)
	assert.False(t, out[2].HasCoordinates())
	assert.False(t, rows[1].HasCoordinates(), "input rows are not mutated")
}

func TestGeocodeMissing_ErrorsLeaveRowsUntouched(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("mapbox down")}
	rows := []VolunteerZip{{Zipcode: "98100", City: "Kiruna", Count: 1}}

	out := GeocodeMissing(context.Background(), rows, geo, "se", discardLogger())
	assert.False(t, out[0].HasCoordinates())
}

func TestGeocodeMissing_NilGeocoder(t *testing.T) {
	rows := []VolunteerZip{{Zipcode: "98100", City: "Kiruna", Count: 1}}
	assert.Equal(t, rows, GeocodeMissing(context.Background(), rows, nil, "se", discardLogger()))
}
