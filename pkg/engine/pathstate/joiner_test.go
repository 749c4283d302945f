package pathstate

import (
	"fmt"
	"testing"
	"time"

	"lintang/transitx/pkg/datastructure"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestJoinKeepsTransitLineage(t *testing.T) {
	transit := New(datastructure.ModeWalk)
	transit.TripID = "T9"
	transit.NumBoardings = 2
	transit.EverBoarded = true

	street := New(datastructure.ModeWalk)
	street.WalkDistance = 120.5

	joined := Join(transit, street)

	assert.Equal(t, 2, joined.NumBoardings)
	assert.Equal(t, "T9", joined.TripID)
	assert.Equal(t, 120.5, joined.WalkDistance)
}

func TestJoinDoesNotAliasInputs(t *testing.T) {
	transit := New(datastructure.ModeWalk)
	require.NoError(t, transit.Board("T1", "R1", "P1", "Z", time.Time{}))
	transit.Freeze()
	street := New(datastructure.ModeWalk)
	require.NoError(t, street.Traverse(s2.LatLngFromDegrees(1, 1), 10))
	street.Freeze()

	joined := Join(transit, street)
	assert.False(t, joined.Frozen())

	require.NoError(t, joined.Board("T2", "R2", "P2", "Z", time.Time{}))
	require.NoError(t, joined.Traverse(s2.LatLngFromDegrees(1, 2), 10))

	assert.Equal(t, []string{"R1"}, transit.RouteSequence)
	assert.Len(t, street.Geometry, 1)
}

func randomState(r *rand.Rand) *PathState {
	modes := []datastructure.TraverseMode{datastructure.ModeWalk, datastructure.ModeBicycle, datastructure.ModeCar}
	s := New(modes[r.Intn(len(modes))])
	if r.Intn(2) == 0 {
		s.EverBoarded = true
		s.NumBoardings = 1 + r.Intn(5)
		s.TripID = fmt.Sprintf("T%d", r.Intn(100))
		s.PreviousTripID = fmt.Sprintf("T%d", r.Intn(100))
		s.PreviousStopID = fmt.Sprintf("S%d", r.Intn(100))
		s.LastAlightedTime = int64(r.Intn(100000))
		s.RouteID = fmt.Sprintf("R%d", r.Intn(10))
		for i := 0; i < s.NumBoardings; i++ {
			s.RouteSequence = append(s.RouteSequence, fmt.Sprintf("R%d", r.Intn(10)))
		}
		s.Zone = fmt.Sprintf("Z%d", r.Intn(3))
		s.ServiceDay = time.Unix(int64(r.Intn(1000))*86400, 0).UTC()
		s.LastPatternID = fmt.Sprintf("P%d", r.Intn(10))
	}
	for i := r.Intn(4); i > 0; i-- {
		s.Geometry = append(s.Geometry, s2.LatLngFromDegrees(r.Float64()*10, r.Float64()*10))
	}
	s.WalkDistance = r.Float64() * 1000
	s.WalkTime = r.Intn(1000)
	s.NonTransitElapsed = s.WalkTime + r.Intn(500)
	return s
}

func TestJoinFieldOwnership(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		ts, ss := randomState(r), randomState(r)
		joined := Join(ts, ss)

		assert.Equal(t, ts.TripID, joined.TripID)
		assert.Equal(t, ts.EverBoarded, joined.EverBoarded)
		assert.Equal(t, ts.NumBoardings, joined.NumBoardings)
		assert.Equal(t, ts.PreviousTripID, joined.PreviousTripID)
		assert.Equal(t, ts.LastAlightedTime, joined.LastAlightedTime)
		assert.Equal(t, ts.RouteID, joined.RouteID)
		assert.Equal(t, ts.RouteSequence, joined.RouteSequence)
		assert.Equal(t, ts.Zone, joined.Zone)
		assert.Equal(t, ts.PreviousStopID, joined.PreviousStopID)
		assert.Equal(t, ts.ServiceDay, joined.ServiceDay)
		assert.Equal(t, ts.LastPatternID, joined.LastPatternID)

		assert.Equal(t, ss.Mode, joined.Mode)
		assert.Equal(t, ss.Geometry, joined.Geometry)
		assert.Equal(t, ss.WalkDistance, joined.WalkDistance)
		assert.Equal(t, ss.WalkTime, joined.WalkTime)
		assert.Equal(t, ss.NonTransitElapsed, joined.NonTransitElapsed)
	}
}
