// Command genmock reads a CSV of volunteer registrations per zipcode and
// generates the /getVolunteerLocations fixture served by cmd/mockbackend and
// used by the page tests. It uses the domain package's own aggregation so the
// fixture matches what the backend contract promises.
//
// The CSV header must contain zipcode, city and count; lat and lon are
// optional. Rows without coordinates are forward-geocoded through Mapbox when
// MAPBOX_TOKEN is set, and skipped otherwise.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/volunteers.csv \
//	  -out data/mock/volunteer_locations.json
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/volunteer-map-page/internal/adapter/mapbox"
	"github.com/couchcryptid/volunteer-map-page/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file with zipcode,city,count[,lat,lon] columns")
	out := flag.String("out", "", "output path for the locations JSON fixture")
	country := flag.String("country", "se", "ISO country code used to restrict geocoding")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	rows, err := readCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("read %d rows", len(rows))

	if token := os.Getenv("MAPBOX_TOKEN"); token != "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		geocoder := mapbox.NewCachedGeocoder(mapbox.NewClient(token, 10*time.Second, logger), 1000)
		rows = domain.GeocodeMissing(context.Background(), rows, geocoder, *country, logger)
	}

	located := rows[:0:0]
	for _, r := range rows {
		if !r.HasCoordinates() {
			log.Printf("skipping %s %s: no coordinates", r.Zipcode, r.City)
			continue
		}
		located = append(located, r)
	}

	agg, err := domain.BuildAggregate(located)
	if err != nil {
		return fmt.Errorf("building aggregate: %w", err)
	}

	if err := writeJSON(*out, agg); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(agg)
	return nil
}

func readCSV(path string) ([]domain.VolunteerZip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"zipcode", "city", "count"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	rows := make([]domain.VolunteerZip, 0, len(records)-1)
	for line, rec := range records[1:] {
		count, err := strconv.Atoi(get(rec, colIdx, "count"))
		if err != nil {
			return nil, fmt.Errorf("line %d: count: %w", line+2, err)
		}
		row := domain.VolunteerZip{
			Zipcode: get(rec, colIdx, "zipcode"),
			City:    get(rec, colIdx, "city"),
			Count:   count,
		}
		if lat, lon := get(rec, colIdx, "lat"), get(rec, colIdx, "lon"); lat != "" && lon != "" {
			row.Coordinates.Lat, err = strconv.ParseFloat(lat, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: lat: %w", line+2, err)
			}
			row.Coordinates.Lon, err = strconv.ParseFloat(lon, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: lon: %w", line+2, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type cityCount struct {
	city  string
	count int
}

func printStats(agg domain.LocationAggregate) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total volunteers: %d\n", agg.Total)
	fmt.Printf("Buckets: %d\n", agg.Count)
	fmt.Printf("Markers: %d\n", agg.PointCount())

	byCity := map[string]int{}
	for _, b := range agg.Locations {
		for _, p := range b.Data {
			byCity[b.City] += p.Count
		}
	}
	cc := make([]cityCount, 0, len(byCity))
	for c, n := range byCity {
		cc = append(cc, cityCount{c, n})
	}
	sort.Slice(cc, func(i, j int) bool { return cc[i].count > cc[j].count })
	fmt.Printf("Cities (%d): ", len(cc))
	for _, c := range cc[:min(10, len(cc))] {
		fmt.Printf("%s=%d ", c.city, c.count)
	}
	fmt.Println()
}
