package mapview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

type stubSource struct {
	agg   domain.LocationAggregate
	err   error
	calls atomic.Int32
	block chan struct{} // when set, FetchLocations waits for close or ctx
}

func (s *stubSource) FetchLocations(ctx context.Context) (domain.LocationAggregate, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return domain.LocationAggregate{}, ctx.Err()
		}
	}
	return s.agg, s.err
}

func testOptions(clock clockwork.Clock, delay time.Duration) Options {
	return Options{
		SettleDelay: delay,
		Clock:       clock,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:     observability.NewMetricsForTesting(),
	}
}

func waitDone(t *testing.T, m *Map) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("map did not finish, phase %s", m.Snapshot().Phase)
	}
}

func waitForTimer(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func TestMap_SettleDelayHoldsMarkersBack(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &stubSource{agg: scenarioA()}
	m := New(src, testOptions(clock, DefaultSettleDelay))

	m.Mount(context.Background())
	waitForTimer(t, clock)

	assert.Equal(t, PhaseSettling, m.Snapshot().Phase)
	v, err := m.View()
	require.NoError(t, err)
	assert.Equal(t, 0, v.MarkerCount())
	assert.Equal(t, DefaultCenter, v.Viewport.Center)

	clock.Advance(DefaultSettleDelay - time.Millisecond)
	assert.Equal(t, PhaseSettling, m.Snapshot().Phase)

	clock.Advance(time.Millisecond)
	waitDone(t, m)

	v, err = m.View()
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, m.Snapshot().Phase)
	assert.Equal(t, 2, v.MarkerCount())
	assert.Equal(t, "Våra 3 st volontärer finns i hela landet", v.Header)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestMap_ZeroDelayCommitsImmediately(t *testing.T) {
	m := New(&stubSource{agg: scenarioA()}, testOptions(clockwork.NewFakeClock(), 0))

	m.Mount(context.Background())
	waitDone(t, m)

	assert.Equal(t, PhaseReady, m.Snapshot().Phase)
	assert.Equal(t, 3, m.Snapshot().Data.Total)
}

func TestMap_FailureSkipsDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := New(&stubSource{err: errors.New("status 500")}, testOptions(clock, DefaultSettleDelay))

	m.Mount(context.Background())
	waitDone(t, m)

	s := m.Snapshot()
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, domain.EmptyAggregate(), s.Data)

	v, err := m.View()
	require.NoError(t, err)
	assert.Equal(t, "Våra 0 st volontärer finns i hela landet", v.Header)
	assert.Equal(t, 0, v.MarkerCount())
}

func TestMap_MountFetchesOnce(t *testing.T) {
	src := &stubSource{agg: scenarioA()}
	m := New(src, testOptions(clockwork.NewFakeClock(), 0))

	m.Mount(context.Background())
	m.Mount(context.Background())
	waitDone(t, m)
	m.Mount(context.Background())

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestMap_UnmountCancelsPendingSettle(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := clockwork.NewFakeClock()
	opts := testOptions(clock, DefaultSettleDelay)
	m := New(&stubSource{agg: scenarioA()}, opts)

	m.Mount(context.Background())
	waitForTimer(t, clock)

	m.Unmount()
	waitDone(t, m)
	clock.Advance(time.Second)

	s := m.Snapshot()
	assert.Equal(t, PhaseUnmounted, s.Phase)
	assert.Equal(t, 0, s.Data.Total)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.SettlesCancelled))
}

func TestMap_UnmountCancelsFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &stubSource{agg: scenarioA(), block: make(chan struct{})}
	m := New(src, testOptions(clockwork.NewFakeClock(), 0))

	m.Mount(context.Background())
	m.Unmount()
	waitDone(t, m)
	close(src.block)

	assert.Equal(t, PhaseUnmounted, m.Snapshot().Phase)
	assert.Equal(t, 0, m.Snapshot().Data.Total)
}

func TestMap_UnmountBeforeMount(t *testing.T) {
	src := &stubSource{agg: scenarioA()}
	m := New(src, testOptions(clockwork.NewFakeClock(), 0))

	m.Unmount()
	m.Mount(context.Background())
	waitDone(t, m)

	assert.Equal(t, int32(0), src.calls.Load())
	m.Unmount()
}

func TestNew_Defaults(t *testing.T) {
	m := New(&stubSource{}, Options{})
	assert.NotNil(t, m.clock)
	assert.NotNil(t, m.logger)
	assert.NotNil(t, m.metrics)
	assert.Equal(t, PhaseIdle, m.Snapshot().Phase)
}
