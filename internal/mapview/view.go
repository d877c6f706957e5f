package mapview

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
)

// Initial viewport over Sweden.
var (
	DefaultCenter  = domain.Coordinates{Lat: 59.8, Lon: 14.9}
	DefaultZoom    = 5
	DefaultMaxZoom = 19
)

// TileURL is the OpenStreetMap tile template used by the map.
const TileURL = "https://{s}.tile.osm.org/{z}/{x}/{y}.png"

// Viewport is the map's initial camera.
type Viewport struct {
	Center  domain.Coordinates `json:"center"`
	Zoom    int                `json:"zoom"`
	MaxZoom int                `json:"maxZoom"`
	TileURL string             `json:"tileUrl"`
}

// Marker is one point on the map with its popup label.
type Marker struct {
	Position domain.Coordinates `json:"position"`
	Label    string             `json:"label"`
}

// Cluster is the marker group for one city bucket. Markers sharing a position
// collapse into the cluster glyph instead of fanning out at max zoom.
type Cluster struct {
	City              string                `json:"city"`
	Zipcode           string                `json:"zipcode"`
	SpiderfyOnMaxZoom bool                  `json:"spiderfyOnMaxZoom"`
	SingleMarkerMode  bool                  `json:"singleMarkerMode"`
	Bounds            [2]domain.Coordinates `json:"bounds"` // south-west, north-east
	Markers           []Marker              `json:"markers"`
}

// View is everything needed to draw the map section.
type View struct {
	Header   string    `json:"header"`
	Total    int       `json:"total"`
	Phase    string    `json:"phase"`
	Viewport Viewport  `json:"viewport"`
	Clusters []Cluster `json:"clusters"`
}

// MarkerCount returns the number of markers across all clusters.
func (v View) MarkerCount() int {
	n := 0
	for _, c := range v.Clusters {
		n += len(c.Markers)
	}
	return n
}

// BuildView renders the committed data of s. Pending data is never rendered.
// A point with invalid coordinates fails the whole view.
func BuildView(s State) (View, error) {
	if err := s.Data.Validate(); err != nil {
		return View{}, fmt.Errorf("build map view: %w", err)
	}

	v := View{
		Header: domain.HeaderText(s.Data.Total),
		Total:  s.Data.Total,
		Phase:  s.Phase.String(),
		Viewport: Viewport{
			Center:  DefaultCenter,
			Zoom:    DefaultZoom,
			MaxZoom: DefaultMaxZoom,
			TileURL: TileURL,
		},
		Clusters: make([]Cluster, 0, len(s.Data.Locations)),
	}

	for _, bucket := range s.Data.Locations {
		c := Cluster{
			City:              bucket.City,
			Zipcode:           bucket.Zipcode,
			SpiderfyOnMaxZoom: false,
			SingleMarkerMode:  true,
			Markers:           make([]Marker, 0, len(bucket.Data)),
		}
		points := make(orb.MultiPoint, 0, len(bucket.Data))
		for _, p := range bucket.Data {
			c.Markers = append(c.Markers, Marker{Position: p.Coordinates, Label: domain.MarkerText(p)})
			points = append(points, p.Coordinates.Point())
		}
		if len(points) > 0 {
			b := points.Bound()
			c.Bounds = [2]domain.Coordinates{
				{Lat: b.Min.Lat(), Lon: b.Min.Lon()},
				{Lat: b.Max.Lat(), Lon: b.Max.Lon()},
			}
		}
		v.Clusters = append(v.Clusters, c)
	}
	return v, nil
}
