// Package page composes one page load of the volunteer page: the static
// panels, the registration area and the volunteer map, plus the server time
// carried alongside the registration state.
package page

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/mapview"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
	"github.com/couchcryptid/volunteer-map-page/internal/registration"
)

// TimeSource fetches the backend's server time.
type TimeSource interface {
	FetchTime(ctx context.Context) (domain.TimeValue, error)
}

// Deps are the collaborators shared by every page load.
type Deps struct {
	Time       TimeSource
	Locations  mapview.LocationSource
	MapOptions mapview.Options
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// Shell is one page load. It owns the time value and the registration
// outcome; the map owns its own locations.
type Shell struct {
	id           string
	timeSource   TimeSource
	logger       *slog.Logger
	metrics      *observability.Metrics
	mapView      *mapview.Map
	registration *registration.Controller

	mu       sync.Mutex
	time     domain.TimeValue
	mounted  bool
	cancel   context.CancelFunc
	timeDone chan struct{}
}

// NewID returns a fresh page instance id.
func NewID() string { return uuid.NewString() }

// NewShell creates an unmounted page.
func NewShell(id string, deps Deps) *Shell {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	mapOpts := deps.MapOptions
	if mapOpts.Logger == nil {
		mapOpts.Logger = logger
	}
	if mapOpts.Metrics == nil {
		mapOpts.Metrics = metrics
	}

	return &Shell{
		id:           id,
		timeSource:   deps.Time,
		logger:       logger.With("page_id", id),
		metrics:      metrics,
		mapView:      mapview.New(deps.Locations, mapOpts),
		registration: registration.NewController(),
		timeDone:     make(chan struct{}),
	}
}

// ID returns the page instance id.
func (s *Shell) ID() string { return s.id }

// Mount fires the time fetch and mounts the map. The two run independently.
func (s *Shell) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.fetchTime(ctx)
	s.mapView.Mount(ctx)
}

func (s *Shell) fetchTime(ctx context.Context) {
	defer close(s.timeDone)

	t, err := s.timeSource.FetchTime(ctx)
	if err != nil {
		s.logger.Warn("error setting time", "error", err)
		return
	}

	s.mu.Lock()
	s.time = t
	s.mu.Unlock()
}

// Wait blocks until both fetches have finished or ctx is done.
func (s *Shell) Wait(ctx context.Context) error {
	for _, done := range []<-chan struct{}{s.timeDone, s.mapView.Done()} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Time returns the server time fetched at mount, or 0.
func (s *Shell) Time() domain.TimeValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

// OnRegistrationResult is the registration form's callback. Only the first
// call changes the page; the time value is untouched either way.
func (s *Shell) OnRegistrationResult(p registration.Payload) (domain.Outcome, bool) {
	outcome, applied := s.registration.OnRegistrationResult(p)
	if !applied {
		s.metrics.DuplicateCallbacks.Inc()
		s.logger.Info("registration result ignored, outcome already set", "outcome", outcome.Kind.String())
		return outcome, false
	}
	s.metrics.RegistrationOutcomes.WithLabelValues(outcome.Kind.String()).Inc()
	s.logger.Info("registration result", "type", p.Type, "outcome", outcome.Kind.String())
	return outcome, true
}

// Outcome returns the registration outcome.
func (s *Shell) Outcome() domain.Outcome { return s.registration.Outcome() }

// MapView renders the map section alone.
func (s *Shell) MapView() (mapview.View, error) { return s.mapView.View() }

// Close unmounts the map and cancels anything still in flight.
func (s *Shell) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	s.mapView.Unmount()
	if cancel != nil {
		cancel()
	}
}
