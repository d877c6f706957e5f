package mapview

import "github.com/couchcryptid/volunteer-map-page/internal/domain"

// Phase is the lifecycle position of a mounted map.
type Phase int

const (
	PhaseIdle      Phase = iota // not mounted yet
	PhaseLoading                // fetch in flight
	PhaseSettling               // data received, waiting for the settle delay
	PhaseReady                  // data committed
	PhaseFailed                 // fetch failed, empty data committed
	PhaseUnmounted              // removed; no further updates
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSettling:
		return "settling"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return "invalid"
	}
}

// Terminal reports whether the phase will not change again on its own.
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseFailed || p == PhaseUnmounted
}

// State is the map's own data. Data is what gets rendered; pending holds a
// fetched aggregate that has not been committed yet.
type State struct {
	Phase   Phase
	Data    domain.LocationAggregate
	pending *domain.LocationAggregate
}

// InitialState is an empty, unmounted map.
func InitialState() State {
	return State{Phase: PhaseIdle, Data: domain.EmptyAggregate()}
}

// Pending reports whether fetched data is waiting to be committed.
func (s State) Pending() bool { return s.pending != nil }

// Action is an event applied to State by Reduce.
type Action interface{ isAction() }

type (
	FetchStarted   struct{}
	FetchSucceeded struct{ Data domain.LocationAggregate }
	FetchFailed    struct{ Err error }
	Settled        struct{}
	Unmounted      struct{}
)

func (FetchStarted) isAction()   {}
func (FetchSucceeded) isAction() {}
func (FetchFailed) isAction()    {}
func (Settled) isAction()        {}
func (Unmounted) isAction()      {}

// Reduce returns the state after applying a. Actions that do not fit the
// current phase leave the state unchanged, and nothing changes once unmounted.
func Reduce(s State, a Action) State {
	if s.Phase == PhaseUnmounted {
		return s
	}

	switch a := a.(type) {
	case FetchStarted:
		if s.Phase == PhaseIdle {
			s.Phase = PhaseLoading
		}
	case FetchSucceeded:
		if s.Phase == PhaseLoading {
			data := a.Data
			s.Phase = PhaseSettling
			s.pending = &data
		}
	case FetchFailed:
		if s.Phase == PhaseLoading {
			s.Phase = PhaseFailed
			s.Data = domain.EmptyAggregate()
			s.pending = nil
		}
	case Settled:
		if s.Phase == PhaseSettling && s.pending != nil {
			s.Phase = PhaseReady
			s.Data = *s.pending
			s.pending = nil
		}
	case Unmounted:
		s.Phase = PhaseUnmounted
		s.pending = nil
	}
	return s
}
