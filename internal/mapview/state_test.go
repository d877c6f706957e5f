package mapview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
)

func TestReduce_SuccessPath(t *testing.T) {
	agg := scenarioA()

	s := InitialState()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, 0, s.Data.Total)

	s = Reduce(s, FetchStarted{})
	assert.Equal(t, PhaseLoading, s.Phase)

	s = Reduce(s, FetchSucceeded{Data: agg})
	assert.Equal(t, PhaseSettling, s.Phase)
	assert.True(t, s.Pending())
	assert.Equal(t, 0, s.Data.Total, "fetched data is not committed before settling")

	s = Reduce(s, Settled{})
	assert.Equal(t, PhaseReady, s.Phase)
	assert.False(t, s.Pending())
	assert.Equal(t, agg, s.Data)
}

func TestReduce_FailurePathIsImmediate(t *testing.T) {
	s := Reduce(Reduce(InitialState(), FetchStarted{}), FetchFailed{Err: errors.New("500")})

	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, domain.EmptyAggregate(), s.Data)
	assert.False(t, s.Pending())
}

func TestReduce_IgnoresOutOfOrderActions(t *testing.T) {
	agg := scenarioA()

	t.Run("success before start", func(t *testing.T) {
		s := Reduce(InitialState(), FetchSucceeded{Data: agg})
		assert.Equal(t, PhaseIdle, s.Phase)
	})

	t.Run("settled without pending data", func(t *testing.T) {
		s := Reduce(Reduce(InitialState(), FetchStarted{}), Settled{})
		assert.Equal(t, PhaseLoading, s.Phase)
	})

	t.Run("failure after commit", func(t *testing.T) {
		s := InitialState()
		for _, a := range []Action{FetchStarted{}, FetchSucceeded{Data: agg}, Settled{}, FetchFailed{}} {
			s = Reduce(s, a)
		}
		assert.Equal(t, PhaseReady, s.Phase)
		assert.Equal(t, 3, s.Data.Total)
	})

	t.Run("second start", func(t *testing.T) {
		s := Reduce(Reduce(Reduce(InitialState(), FetchStarted{}), FetchFailed{}), FetchStarted{})
		assert.Equal(t, PhaseFailed, s.Phase)
	})
}

func TestReduce_UnmountedIsFrozen(t *testing.T) {
	s := InitialState()
	s = Reduce(s, FetchStarted{})
	s = Reduce(s, FetchSucceeded{Data: scenarioA()})
	s = Reduce(s, Unmounted{})
	require.Equal(t, PhaseUnmounted, s.Phase)
	assert.False(t, s.Pending())

	s = Reduce(s, Settled{})
	assert.Equal(t, PhaseUnmounted, s.Phase)
	assert.Equal(t, 0, s.Data.Total, "pending data dropped on unmount is never committed")
}

func TestPhase(t *testing.T) {
	assert.Equal(t, "settling", PhaseSettling.String())
	assert.Equal(t, "invalid", Phase(99).String())
	assert.False(t, PhaseSettling.Terminal())
	assert.True(t, PhaseFailed.Terminal())
}
