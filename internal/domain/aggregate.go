package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// VolunteerZip is one row of volunteer registrations per zipcode, as stored
// by the backend. Coordinates may be missing (zero) until geocoded.
type VolunteerZip struct {
	Zipcode     string
	City        string
	Count       int
	Coordinates Coordinates
}

// HasCoordinates reports whether the row already carries a position.
func (v VolunteerZip) HasCoordinates() bool {
	return v.Coordinates.Lat != 0 || v.Coordinates.Lon != 0
}

type bucketKey struct {
	city    string
	zipcode string
}

// BuildAggregate groups rows into city buckets in first-seen order. Rows at
// the same position within a bucket are merged into one point.
func BuildAggregate(rows []VolunteerZip) (LocationAggregate, error) {
	agg := EmptyAggregate()
	index := make(map[bucketKey]int)

	for i, r := range rows {
		if r.Count < 0 {
			return LocationAggregate{}, fmt.Errorf("row %d (%s): %w", i, r.Zipcode, ErrNegativeCount)
		}
		if !r.Coordinates.Valid() {
			return LocationAggregate{}, fmt.Errorf("row %d (%s): %w", i, r.Zipcode, ErrInvalidCoordinates)
		}

		key := bucketKey{city: r.City, zipcode: r.Zipcode}
		bi, ok := index[key]
		if !ok {
			bi = len(agg.Locations)
			index[key] = bi
			agg.Locations = append(agg.Locations, CityBucket{City: r.City, Zipcode: r.Zipcode})
		}

		bucket := &agg.Locations[bi]
		merged := false
		for j := range bucket.Data {
			if bucket.Data[j].Coordinates == r.Coordinates {
				bucket.Data[j].Count += r.Count
				merged = true
				break
			}
		}
		if !merged {
			bucket.Data = append(bucket.Data, PointRecord{
				Coordinates: r.Coordinates,
				Count:       r.Count,
				City:        r.City,
				Zipcode:     r.Zipcode,
			})
		}
		agg.Total += r.Count
	}

	agg.Count = len(agg.Locations)
	return agg, nil
}

// GeocodeMissing fills in coordinates for rows that have none, using
// "<zipcode> <city>" as the query. Rows that cannot be resolved are left
// untouched and logged; the caller decides whether to keep them.
func GeocodeMissing(ctx context.Context, rows []VolunteerZip, geocoder Geocoder, country string, logger *slog.Logger) []VolunteerZip {
	if geocoder == nil {
		return rows
	}
	out := make([]VolunteerZip, len(rows))
	copy(out, rows)

	for i := range out {
		if out[i].HasCoordinates() {
			continue
		}
		query := fmt.Sprintf("%s %s", out[i].Zipcode, out[i].City)
		result, err := geocoder.ForwardGeocode(ctx, query, country)
		if err != nil {
			logger.Warn("forward geocoding failed", "zipcode", out[i].Zipcode, "city", out[i].City, "error", err)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			logger.Warn("no geocoding match", "zipcode", out[i].Zipcode, "city", out[i].City)
			continue
		}
		out[i].Coordinates = Coordinates{Lat: result.Lat, Lon: result.Lon}
	}
	return out
}
