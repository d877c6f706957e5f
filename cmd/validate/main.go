// Command validate performs integrity checks on a /getVolunteerLocations
// fixture: schema and coordinate validity, aggregate totals, bucket
// consistency, and that the map view renders exactly one marker per point.
// With -csv it also cross-checks the fixture against the CSV it was
// generated from.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -json data/mock/volunteer_locations.json \
//	  -csv data/mock/volunteers.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/mapview"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	jsonPath := flag.String("json", "", "path to the locations JSON fixture")
	csvPath := flag.String("csv", "", "optional source CSV the fixture was generated from")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*jsonPath, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(jsonPath, csvPath string) int {
	fmt.Println("=== Volunteer Location Fixture Validation ===")
	fmt.Println()

	agg, err := loadAggregate(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(agg),
		validateTotals(agg),
		validateBuckets(agg),
		validateRendering(agg),
	}
	if csvPath != "" {
		sum, err := sumCSVCounts(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
			return 1
		}
		phases = append(phases, validateSourceParity(agg, sum))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Fixture: total=%d, buckets=%d, markers=%d\n", agg.Total, len(agg.Locations), agg.PointCount())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadAggregate(path string) (domain.LocationAggregate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LocationAggregate{}, err
	}
	var agg domain.LocationAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return domain.LocationAggregate{}, err
	}
	return agg, nil
}

func sumCSVCounts(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(all) < 2 {
		return 0, fmt.Errorf("no data rows in %s", path)
	}

	countCol := -1
	for i, h := range all[0] {
		if strings.EqualFold(strings.TrimSpace(h), "count") {
			countCol = i
		}
	}
	if countCol < 0 {
		return 0, errors.New("missing column \"count\"")
	}

	sum := 0
	for i, row := range all[1:] {
		if countCol >= len(row) {
			return 0, fmt.Errorf("line %d: short row", i+2)
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[countCol]))
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", i+2, err)
		}
		sum += n
	}
	return sum, nil
}

// ── Phase 1: Schema ──
// Coordinates in range and counts non-negative.

func validateSchema(agg domain.LocationAggregate) *phase {
	p := &phase{name: "Phase 1: Schema (coordinates, counts)"}
	if err := agg.Validate(); err != nil {
		p.errorf("%v", err)
	}
	if agg.Locations == nil {
		p.errorf("locations is null, expected an array")
	}
	return p
}

// ── Phase 2: Totals ──

func validateTotals(agg domain.LocationAggregate) *phase {
	p := &phase{name: "Phase 2: Totals (total, count)"}
	if sum := agg.VolunteerSum(); agg.Total != sum {
		p.errorf("total=%d, sum of point counts=%d", agg.Total, sum)
	}
	if agg.Count != len(agg.Locations) {
		p.errorf("count=%d, buckets=%d", agg.Count, len(agg.Locations))
	}
	return p
}

// ── Phase 3: Buckets ──
// Every point carries its bucket's city and zipcode; no empty buckets.

func validateBuckets(agg domain.LocationAggregate) *phase {
	p := &phase{name: "Phase 3: Bucket consistency"}
	for i, b := range agg.Locations {
		if len(b.Data) == 0 {
			p.errorf("bucket %d (%s %s): no points", i, b.Zipcode, b.City)
		}
		for j, pt := range b.Data {
			if pt.City != b.City || pt.Zipcode != b.Zipcode {
				p.errorf("bucket %d point %d: %s %s does not match bucket %s %s",
					i, j, pt.Zipcode, pt.City, b.Zipcode, b.City)
			}
		}
	}
	return p
}

// ── Phase 4: Rendering ──
// The committed map view has one cluster per bucket and one marker per point.

func validateRendering(agg domain.LocationAggregate) *phase {
	p := &phase{name: "Phase 4: Rendering (clusters, markers)"}

	s := mapview.InitialState()
	s = mapview.Reduce(s, mapview.FetchStarted{})
	s = mapview.Reduce(s, mapview.FetchSucceeded{Data: agg})
	s = mapview.Reduce(s, mapview.Settled{})

	view, err := mapview.BuildView(s)
	if err != nil {
		p.errorf("build view: %v", err)
		return p
	}
	if len(view.Clusters) != len(agg.Locations) {
		p.errorf("clusters=%d, buckets=%d", len(view.Clusters), len(agg.Locations))
	}
	if got, want := view.MarkerCount(), agg.PointCount(); got != want {
		p.errorf("markers=%d, points=%d", got, want)
	}
	if want := domain.HeaderText(agg.Total); view.Header != want {
		p.errorf("header=%q, want %q", view.Header, want)
	}
	for _, c := range view.Clusters {
		for _, m := range c.Markers {
			if m.Label == "" {
				p.errorf("cluster %s %s: empty marker label", c.Zipcode, c.City)
			}
		}
	}
	return p
}

// ── Phase 5: Source parity ──

func validateSourceParity(agg domain.LocationAggregate, csvSum int) *phase {
	p := &phase{name: "Phase 5: Source parity (JSON vs CSV)"}
	if agg.Total > csvSum {
		p.errorf("fixture total %d exceeds CSV sum %d", agg.Total, csvSum)
	}
	if agg.Total < csvSum {
		p.errorf("fixture total %d < CSV sum %d (rows skipped without coordinates?)", agg.Total, csvSum)
	}
	return p
}
