// Command mockbackend serves the two read endpoints of the volunteer backend
// (/time and /getVolunteerLocations) from a fixture written by cmd/genmock,
// so the page can be run locally without the real backend.
//
// Usage:
//
//	go run ./cmd/mockbackend -json data/mock/volunteer_locations.json -addr :5000
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mockbackend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	jsonPath := flag.String("json", "", "path to the locations JSON fixture")
	addr := flag.String("addr", ":5000", "listen address")
	latency := flag.Duration("latency", 0, "artificial delay added to every response")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -json")
	}

	agg, err := loadFixture(*jsonPath)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	logger := observability.NewLogger("info", "text")
	logger.Info("fixture loaded", "total", agg.Total, "buckets", len(agg.Locations), "markers", agg.PointCount())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newHandler(agg, clockwork.NewRealClock(), *latency, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock backend listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadFixture(path string) (domain.LocationAggregate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LocationAggregate{}, err
	}
	var agg domain.LocationAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return domain.LocationAggregate{}, err
	}
	if err := agg.Validate(); err != nil {
		return domain.LocationAggregate{}, err
	}
	if agg.Locations == nil {
		agg.Locations = []domain.CityBucket{}
	}
	return agg, nil
}

type timeResponse struct {
	Time domain.TimeValue `json:"time"`
}

func newHandler(agg domain.LocationAggregate, clock clockwork.Clock, latency time.Duration, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	delay := func() {
		if latency > 0 {
			clock.Sleep(latency)
		}
	}

	mux.HandleFunc("GET /time", func(w http.ResponseWriter, _ *http.Request) {
		delay()
		now := clock.Now()
		writeJSON(w, timeResponse{Time: domain.TimeValue(float64(now.UnixNano()) / float64(time.Second))}, logger)
	})
	mux.HandleFunc("GET /getVolunteerLocations", func(w http.ResponseWriter, _ *http.Request) {
		delay()
		writeJSON(w, agg, logger)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}
