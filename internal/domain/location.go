package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidCoordinates marks a point whose latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrNegativeCount marks a volunteer count below zero.
	ErrNegativeCount = errors.New("negative volunteer count")
)

// Coordinates is a WGS-84 position encoded on the wire as [lat, lon].
type Coordinates struct {
	Lat float64
	Lon float64
}

// Point converts to an orb.Point, which is ordered [lon, lat].
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Valid reports whether both components are finite and within range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode coordinates: want [lat, lon], got %d values: %w", len(pair), ErrInvalidCoordinates)
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

// PointRecord is the number of volunteers registered at one exact position.
type PointRecord struct {
	Coordinates Coordinates `json:"coordinates"`
	Count       int         `json:"count"`
	City        string      `json:"city"`    // duplicated from the bucket for display
	Zipcode     string      `json:"zipcode"` // duplicated from the bucket for display
}

// CityBucket groups the points that belong to one city and zipcode.
type CityBucket struct {
	City    string        `json:"city"`
	Zipcode string        `json:"zipcode"`
	Data    []PointRecord `json:"data"`
}

// LocationAggregate is the full volunteer coverage payload.
type LocationAggregate struct {
	Total     int          `json:"total"`
	Count     int          `json:"count"`
	Locations []CityBucket `json:"locations"`
}

// EmptyAggregate is the fallback shown when the locations cannot be fetched.
func EmptyAggregate() LocationAggregate {
	return LocationAggregate{Total: 0, Locations: []CityBucket{}}
}

// PointCount returns the number of points across all buckets, which is also
// the number of markers the map renders.
func (a LocationAggregate) PointCount() int {
	n := 0
	for _, b := range a.Locations {
		n += len(b.Data)
	}
	return n
}

// VolunteerSum adds up the per-point counts.
func (a LocationAggregate) VolunteerSum() int {
	n := 0
	for _, b := range a.Locations {
		for _, p := range b.Data {
			n += p.Count
		}
	}
	return n
}

// Validate checks counts and coordinates of every point. The first problem is
// returned, wrapped with its bucket and point position.
func (a LocationAggregate) Validate() error {
	if a.Total < 0 || a.Count < 0 {
		return fmt.Errorf("aggregate totals: %w", ErrNegativeCount)
	}
	for i, b := range a.Locations {
		for j, p := range b.Data {
			if !p.Coordinates.Valid() {
				return fmt.Errorf("location %d (%s) point %d [%v, %v]: %w",
					i, b.City, j, p.Coordinates.Lat, p.Coordinates.Lon, ErrInvalidCoordinates)
			}
			if p.Count < 0 {
				return fmt.Errorf("location %d (%s) point %d: %w", i, b.City, j, ErrNegativeCount)
			}
		}
	}
	return nil
}
