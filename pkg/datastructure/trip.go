package datastructure

import (
	"fmt"
)

// TripSchedule is the minimal view of a scheduled trip the engine needs. Every engine type
// is generic over it so timetable implementations can be swapped without inheritance.
type TripSchedule interface {
	TripID() string
	RouteID() string
	NumberOfStops() int
	// StopIndex stop index di posisi pos pada pattern trip
	StopIndex(pos int) int
	// Arrival & Departure dalam detik sejak awal service day
	Arrival(pos int) int
	Departure(pos int) int
}

type Stop struct {
	Index int     `json:"index"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Zone  string  `json:"zone,omitempty"`
}

// Footpath is a standard (walking) transfer from one stop to another.
type Footpath struct {
	ToStop   int `json:"to_stop"`
	Duration int `json:"duration"`
}

type Trip struct {
	ID         string `json:"id"`
	Route      string `json:"route"`
	Pattern    string `json:"pattern"`
	Stops      []int  `json:"stops"`
	Arrivals   []int  `json:"arrivals"`
	Departures []int  `json:"departures"`
}

func NewTrip(id, route string, stops, arrivals, departures []int) *Trip {
	return &Trip{
		ID:         id,
		Route:      route,
		Pattern:    route,
		Stops:      stops,
		Arrivals:   arrivals,
		Departures: departures,
	}
}

func (t *Trip) TripID() string { return t.ID }
func (t *Trip) RouteID() string { return t.Route }
func (t *Trip) NumberOfStops() int { return len(t.Stops) }
func (t *Trip) StopIndex(pos int) int { return t.Stops[pos] }
func (t *Trip) Arrival(pos int) int { return t.Arrivals[pos] }
func (t *Trip) Departure(pos int) int { return t.Departures[pos] }
func (t *Trip) String() string { return t.ID }

// Validate checks the trip is internally consistent: equal slice lengths, departure not before
// arrival at a stop and times never decreasing along the pattern.
func (t *Trip) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trip without id")
	}
	n := len(t.Stops)
	if n == 0 {
		return fmt.Errorf("trip %s: no stops", t.ID)
	}
	if len(t.Arrivals) != n || len(t.Departures) != n {
		return fmt.Errorf("trip %s: %d stops but %d arrivals and %d departures", t.ID, n, len(t.Arrivals), len(t.Departures))
	}
	for i := 0; i < n; i++ {
		if t.Departures[i] < t.Arrivals[i] {
			return fmt.Errorf("trip %s: departure before arrival at position %d", t.ID, i)
		}
		if i > 0 && t.Arrivals[i] < t.Departures[i-1] {
			return fmt.Errorf("trip %s: time goes backwards at position %d", t.ID, i)
		}
	}
	return nil
}

// InRange reports whether pos is a valid stop position of trip.
func InRange[T TripSchedule](trip T, pos int) bool {
	return pos >= 0 && pos < trip.NumberOfStops()
}
