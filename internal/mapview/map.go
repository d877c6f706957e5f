// Package mapview holds the volunteer map: one fetch of the aggregated
// locations per page load, a settle delay before the data is committed, and
// the clustered marker view built from the committed data.
package mapview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

// DefaultSettleDelay matches the time the map widget needs to lay out its
// viewport before markers added to it show up.
const DefaultSettleDelay = 500 * time.Millisecond

// LocationSource fetches the aggregated volunteer locations.
type LocationSource interface {
	FetchLocations(ctx context.Context) (domain.LocationAggregate, error)
}

// Options configures a Map. Zero values pick real-time defaults except
// SettleDelay, where zero means commit immediately.
type Options struct {
	SettleDelay time.Duration
	Clock       clockwork.Clock
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Map owns one page's location state.
type Map struct {
	source  LocationSource
	delay   time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	timer  clockwork.Timer
	done   chan struct{}
}

// New creates an unmounted map reading from source.
func New(source LocationSource, opts Options) *Map {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	return &Map{
		source:  source,
		delay:   opts.SettleDelay,
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		state:   InitialState(),
		done:    make(chan struct{}),
	}
}

// Mount starts the single location fetch. Calling it again, or after
// Unmount, does nothing.
func (m *Map) Mount(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseIdle {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.dispatch(FetchStarted{})

	go m.fetch(ctx)
}

func (m *Map) fetch(ctx context.Context) {
	agg, err := m.source.FetchLocations(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseLoading {
		return
	}
	if err != nil {
		m.logger.Warn("volunteer locations unavailable, showing empty map", "error", err)
		m.dispatch(FetchFailed{Err: err})
		return
	}

	m.dispatch(FetchSucceeded{Data: agg})
	if m.delay <= 0 {
		m.dispatch(Settled{})
		return
	}
	m.timer = m.clock.AfterFunc(m.delay, m.settle)
}

func (m *Map) settle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timer = nil
	m.dispatch(Settled{})
}

// Unmount cancels the fetch and any pending commit. The state is frozen.
func (m *Map) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase == PhaseUnmounted {
		return
	}
	if m.timer != nil {
		if m.timer.Stop() {
			m.metrics.SettlesCancelled.Inc()
		}
		m.timer = nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.dispatch(Unmounted{})
}

// dispatch applies a to the state and releases waiters once the phase is
// terminal. Callers hold m.mu.
func (m *Map) dispatch(a Action) {
	before := m.state.Phase
	m.state = Reduce(m.state, a)
	if !before.Terminal() && m.state.Phase.Terminal() {
		close(m.done)
	}
}

// Done is closed when the map has committed data, failed, or been unmounted.
func (m *Map) Done() <-chan struct{} { return m.done }

// Snapshot returns a copy of the current state.
func (m *Map) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// View renders the current committed state.
func (m *Map) View() (View, error) {
	return BuildView(m.Snapshot())
}
