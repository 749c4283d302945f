package pathstate

import (
	"errors"
	"time"

	"lintang/transitx/pkg/datastructure"

	"github.com/golang/geo/s2"
	"github.com/twpayne/go-polyline"
)

const earthRadiusMeters = 6371010.0

// ErrFrozenState is returned when a shared state is mutated instead of cloned.
var ErrFrozenState = errors.New("path state is frozen, clone it before modifying")

// PathState is the per-branch state carried through a search. Transit lineage fields only
// mean something once EverBoarded is true.
type PathState struct {
	// transit lineage
	TripID           string
	EverBoarded      bool
	NumBoardings     int
	PreviousTripID   string
	LastAlightedTime int64 // unix seconds
	RouteID          string
	RouteSequence    []string
	Zone             string
	PreviousStopID   string
	ServiceDay       time.Time
	LastPatternID    string

	// street / spatial
	Mode              datastructure.TraverseMode
	Geometry          []s2.LatLng
	WalkDistance      float64 // meter
	WalkTime          int     // detik
	NonTransitElapsed int     // detik

	frozen bool
}

func New(mode datastructure.TraverseMode) *PathState {
	return &PathState{Mode: mode}
}

// Clone returns an unfrozen deep copy owned by the caller.
func (s *PathState) Clone() *PathState {
	c := *s
	c.RouteSequence = cloneSlice(s.RouteSequence)
	c.Geometry = cloneSlice(s.Geometry)
	c.frozen = false
	return &c
}

// Freeze marks the state as shared between branches. Frozen states are never mutated.
func (s *PathState) Freeze() *PathState {
	s.frozen = true
	return s
}

func (s *PathState) Frozen() bool {
	return s.frozen
}

// Edit returns a mutable clone, the usual way to branch from a frozen state.
func (s *PathState) Edit() *PathState {
	return s.Clone()
}

func (s *PathState) Board(tripID, routeID, patternID, zone string, serviceDay time.Time) error {
	if s.frozen {
		return ErrFrozenState
	}
	s.TripID = tripID
	s.RouteID = routeID
	s.LastPatternID = patternID
	s.Zone = zone
	s.ServiceDay = serviceDay
	s.EverBoarded = true
	s.NumBoardings++
	s.RouteSequence = append(s.RouteSequence, routeID)
	return nil
}

func (s *PathState) Alight(stopID string, at time.Time) error {
	if s.frozen {
		return ErrFrozenState
	}
	s.PreviousTripID = s.TripID
	s.TripID = ""
	s.PreviousStopID = stopID
	s.LastAlightedTime = at.Unix()
	return nil
}

func (s *PathState) SetMode(mode datastructure.TraverseMode) error {
	if s.frozen {
		return ErrFrozenState
	}
	s.Mode = mode
	return nil
}

// Traverse moves the state along the street network to point, taking seconds.
func (s *PathState) Traverse(point s2.LatLng, seconds int) error {
	if s.frozen {
		return ErrFrozenState
	}
	dist := 0.0
	if n := len(s.Geometry); n > 0 {
		dist = DistanceMeters(s.Geometry[n-1], point)
	}
	s.Geometry = append(s.Geometry, point)
	s.NonTransitElapsed += seconds
	if s.Mode == datastructure.ModeWalk {
		s.WalkDistance += dist
		s.WalkTime += seconds
	}
	return nil
}

func (s *PathState) OnBoard() bool {
	return s.TripID != ""
}

func (s *PathState) EncodedGeometry() string {
	coords := make([][]float64, 0, len(s.Geometry))
	for _, p := range s.Geometry {
		coords = append(coords, []float64{p.Lat.Degrees(), p.Lng.Degrees()})
	}
	return string(polyline.EncodeCoords(coords))
}

// DistanceMeters great circle distance.
func DistanceMeters(a, b s2.LatLng) float64 {
	return a.Distance(b).Radians() * earthRadiusMeters
}

func cloneSlice[E any](s []E) []E {
	if s == nil {
		return nil
	}
	c := make([]E, len(s))
	copy(c, s)
	return c
}
