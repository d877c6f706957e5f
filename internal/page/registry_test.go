package page

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/volunteer-map-page/internal/mapview"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

func registryShell(id string) *Shell {
	return NewShell(id, Deps{
		Time:       stubTime{},
		Locations:  stubLocations{agg: scenarioA()},
		MapOptions: mapview.Options{Clock: clockwork.NewFakeClock()},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    observability.NewMetricsForTesting(),
	})
}

func TestRegistry_GetPut(t *testing.T) {
	r := NewRegistry(10, observability.NewMetricsForTesting())
	s := registryShell("a")
	r.Put(s)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	r := NewRegistry(2, metrics)
	a, b, c := registryShell("a"), registryShell("b"), registryShell("c")

	r.Put(a)
	r.Put(b)
	_, _ = r.Get("a") // a is now most recent
	r.Put(c)

	_, ok := r.Get("b")
	assert.False(t, ok, "b should be evicted")
	_, ok = r.Get("a")
	assert.True(t, ok)
	_, ok = r.Get("c")
	assert.True(t, ok)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PagesActive))
	assert.Equal(t, mapview.PhaseUnmounted, b.mapView.Snapshot().Phase, "evicted page is closed")
}

func TestRegistry_ReplaceSameID(t *testing.T) {
	r := NewRegistry(2, observability.NewMetricsForTesting())
	old, replacement := registryShell("a"), registryShell("a")

	r.Put(old)
	r.Put(replacement)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, mapview.PhaseUnmounted, old.mapView.Snapshot().Phase)
}

func TestRegistry_CloseAll(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	r := NewRegistry(5, metrics)
	a := registryShell("a")
	r.Put(a)
	r.Put(registryShell("b"))

	r.CloseAll()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PagesActive))
	assert.Equal(t, mapview.PhaseUnmounted, a.mapView.Snapshot().Phase)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}

func TestRegistry_PutSameShellTwiceKeepsItOpen(t *testing.T) {
	r := NewRegistry(2, observability.NewMetricsForTesting())
	s := registryShell("a")

	r.Put(s)
	r.Put(s)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, mapview.PhaseIdle, s.mapView.Snapshot().Phase)
}
