package datastructure

import "fmt"

// StopVisit is a trip touching a stop at a position: a boarding (departure) or an alighting
// (arrival) event.
type StopVisit[T TripSchedule] struct {
	Trip         T
	Stop         int
	StopPosition int
	Time         int
	Departure    bool
}

func ArrivalAt[T TripSchedule](trip T, pos int) StopVisit[T] {
	return StopVisit[T]{
		Trip:         trip,
		Stop:         trip.StopIndex(pos),
		StopPosition: pos,
		Time:         trip.Arrival(pos),
	}
}

func DepartureAt[T TripSchedule](trip T, pos int) StopVisit[T] {
	return StopVisit[T]{
		Trip:         trip,
		Stop:         trip.StopIndex(pos),
		StopPosition: pos,
		Time:         trip.Departure(pos),
		Departure:    true,
	}
}

// SameTrip reports whether both visits reference the same trip. Positions of visits on
// different trips are not comparable.
func (v StopVisit[T]) SameTrip(o StopVisit[T]) bool {
	return v.Trip.TripID() == o.Trip.TripID()
}

func (v StopVisit[T]) Before(o StopVisit[T]) bool {
	return v.SameTrip(o) && v.StopPosition < o.StopPosition
}

func (v StopVisit[T]) String() string {
	kind := "arr"
	if v.Departure {
		kind = "dep"
	}
	return fmt.Sprintf("[%s@%d stop %d %s %s]", v.Trip.TripID(), v.StopPosition, v.Stop, kind, ServiceTime(v.Time))
}

// ServiceTime formats seconds since service-day start as HH:MM:SS, hours may exceed 23.
func ServiceTime(sec int) string {
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, sec/3600, (sec/60)%60, sec%60)
}
