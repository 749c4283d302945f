package transfers

import "lintang/transitx/pkg/datastructure"

// FindDepartureStopPosition returns the first stop position of trip visiting stop with a
// departure at or after earliestDepartureTime, or -1.
func FindDepartureStopPosition[T datastructure.TripSchedule](trip T, earliestDepartureTime, stop int) int {
	return findDepartureStopPositionFrom(trip, 0, earliestDepartureTime, stop)
}

func findDepartureStopPositionFrom[T datastructure.TripSchedule](trip T, start, earliestDepartureTime, stop int) int {
	size := trip.NumberOfStops()
	i := start
	if i >= size {
		return -1
	}

	for trip.Departure(i) < earliestDepartureTime {
		i++
		if i == size {
			return -1
		}
	}

	for trip.StopIndex(i) != stop {
		i++
		if i == size {
			return -1
		}
	}
	return i
}

// FindArrivalStopPosition returns the last stop position of trip visiting stop with an
// arrival at or before latestArrivalTime, or -1. Patterns can visit the same stop more than
// once, the time bound picks the right visit.
func FindArrivalStopPosition[T datastructure.TripSchedule](trip T, latestArrivalTime, stop int) int {
	i := trip.NumberOfStops() - 1
	if i < 0 {
		return -1
	}

	for trip.Arrival(i) > latestArrivalTime {
		i--
		if i == -1 {
			return -1
		}
	}

	for trip.StopIndex(i) != stop {
		i--
		if i == -1 {
			return -1
		}
	}
	return i
}
