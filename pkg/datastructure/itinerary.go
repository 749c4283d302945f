package datastructure

import (
	"time"
)

type TraverseMode string

const (
	ModeWalk    TraverseMode = "WALK"
	ModeBicycle TraverseMode = "BICYCLE"
	ModeCar     TraverseMode = "CAR"
	ModeBus     TraverseMode = "BUS"
	ModeTram    TraverseMode = "TRAM"
	ModeRail    TraverseMode = "RAIL"
	ModeSubway  TraverseMode = "SUBWAY"
	ModeFerry   TraverseMode = "FERRY"
	ModeTransit TraverseMode = "TRANSIT"
)

func (m TraverseMode) IsTransit() bool {
	switch m {
	case ModeBus, ModeTram, ModeRail, ModeSubway, ModeFerry, ModeTransit:
		return true
	}
	return false
}

type Leg struct {
	Mode      TraverseMode `json:"mode" validate:"required"`
	FromStop  string       `json:"from_stop,omitempty"`
	ToStop    string       `json:"to_stop,omitempty"`
	TripID    string       `json:"trip_id,omitempty"`
	RouteID   string       `json:"route_id,omitempty"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Distance  float64      `json:"distance,omitempty"`
	Geometry  string       `json:"geometry,omitempty"` // encoded polyline
}

func (l Leg) IsTransit() bool {
	return l.Mode.IsTransit()
}

// Itinerary is treated as read-only by every filter.
type Itinerary struct {
	ID              string    `json:"id"`
	Legs            []Leg     `json:"legs"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	GeneralizedCost float64   `json:"generalized_cost"`
}

func (it *Itinerary) HasTransit() bool {
	for _, l := range it.Legs {
		if l.IsTransit() {
			return true
		}
	}
	return false
}
