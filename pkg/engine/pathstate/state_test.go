package pathstate

import (
	"testing"
	"time"

	"lintang/transitx/pkg/datastructure"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardAndAlight(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := New(datastructure.ModeWalk)

	require.NoError(t, s.Board("T1", "R1", "P1", "Z1", day))
	assert.True(t, s.EverBoarded)
	assert.True(t, s.OnBoard())
	assert.Equal(t, 1, s.NumBoardings)
	assert.Equal(t, []string{"R1"}, s.RouteSequence)

	require.NoError(t, s.Alight("S3", day.Add(10*time.Minute)))
	assert.False(t, s.OnBoard())
	assert.Equal(t, "T1", s.PreviousTripID)
	assert.Equal(t, "S3", s.PreviousStopID)
	assert.Equal(t, day.Add(10*time.Minute).Unix(), s.LastAlightedTime)

	require.NoError(t, s.Board("T2", "R2", "P2", "Z1", day))
	assert.Equal(t, 2, s.NumBoardings)
	assert.Equal(t, []string{"R1", "R2"}, s.RouteSequence)
}

func TestTraverse(t *testing.T) {
	s := New(datastructure.ModeWalk)
	a := s2.LatLngFromDegrees(-7.7956, 110.3695)
	b := s2.LatLngFromDegrees(-7.7966, 110.3695)

	require.NoError(t, s.Traverse(a, 0))
	require.NoError(t, s.Traverse(b, 80))

	// 0.001 derajat lintang ~ 111 m
	assert.InDelta(t, 111.2, s.WalkDistance, 0.5)
	assert.Equal(t, 80, s.WalkTime)
	assert.Equal(t, 80, s.NonTransitElapsed)
	assert.Len(t, s.Geometry, 2)
	assert.NotEmpty(t, s.EncodedGeometry())

	require.NoError(t, s.SetMode(datastructure.ModeBicycle))
	require.NoError(t, s.Traverse(a, 30))
	assert.Equal(t, 80, s.WalkTime)
	assert.Equal(t, 110, s.NonTransitElapsed)
}

func TestEncodedGeometry(t *testing.T) {
	s := New(datastructure.ModeWalk)
	s.Geometry = []s2.LatLng{
		s2.LatLngFromDegrees(38.5, -120.2),
		s2.LatLngFromDegrees(40.7, -120.95),
		s2.LatLngFromDegrees(43.252, -126.453),
	}
	// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", s.EncodedGeometry())
}

func TestFrozenStateIsNeverMutated(t *testing.T) {
	s := New(datastructure.ModeWalk)
	require.NoError(t, s.Board("T1", "R1", "P1", "Z1", time.Time{}))
	s.Freeze()

	assert.ErrorIs(t, s.Board("T2", "R2", "P2", "Z2", time.Time{}), ErrFrozenState)
	assert.ErrorIs(t, s.Alight("S1", time.Time{}), ErrFrozenState)
	assert.ErrorIs(t, s.SetMode(datastructure.ModeCar), ErrFrozenState)
	assert.ErrorIs(t, s.Traverse(s2.LatLngFromDegrees(0, 0), 1), ErrFrozenState)
	assert.Equal(t, 1, s.NumBoardings)

	branch := s.Edit()
	assert.False(t, branch.Frozen())
	require.NoError(t, branch.Board("T2", "R2", "P2", "Z2", time.Time{}))
	assert.Equal(t, 2, branch.NumBoardings)
	assert.Equal(t, []string{"R1"}, s.RouteSequence)
	assert.Equal(t, []string{"R1", "R2"}, branch.RouteSequence)
}

func TestCloneIsDeep(t *testing.T) {
	s := New(datastructure.ModeWalk)
	require.NoError(t, s.Traverse(s2.LatLngFromDegrees(1, 1), 0))
	require.NoError(t, s.Board("T1", "R1", "P1", "", time.Time{}))

	c := s.Clone()
	c.RouteSequence[0] = "X"
	c.Geometry[0] = s2.LatLngFromDegrees(2, 2)

	assert.Equal(t, "R1", s.RouteSequence[0])
	assert.Equal(t, s2.LatLngFromDegrees(1, 1), s.Geometry[0])
}
