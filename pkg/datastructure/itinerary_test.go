package datastructure_test

import (
	"testing"
	"time"

	"lintang/transitx/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func TestItineraryHasTransit(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	walk := datastructure.Leg{Mode: datastructure.ModeWalk, StartTime: start, EndTime: start.Add(5 * time.Minute)}
	bus := datastructure.Leg{Mode: datastructure.ModeBus, TripID: "T1", StartTime: start.Add(5 * time.Minute), EndTime: start.Add(20 * time.Minute)}
	rail := datastructure.Leg{Mode: datastructure.ModeRail, TripID: "T2", StartTime: start.Add(25 * time.Minute), EndTime: start.Add(40 * time.Minute)}

	walkOnly := &datastructure.Itinerary{Legs: []datastructure.Leg{walk}, StartTime: start, EndTime: walk.EndTime}
	assert.False(t, walkOnly.HasTransit())

	withTransit := &datastructure.Itinerary{Legs: []datastructure.Leg{walk, bus, rail}, StartTime: start, EndTime: rail.EndTime}
	assert.True(t, withTransit.HasTransit())
}
