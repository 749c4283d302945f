package transferoptimization_test

import (
	"context"
	"testing"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transferoptimization"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type footpaths map[int][]datastructure.Footpath

func (f footpaths) Footpaths(stop int) []datastructure.Footpath { return f[stop] }

type leg = transferoptimization.TransitLeg[*datastructure.Trip]

var (
	tripA = datastructure.NewTrip("A", "R1", []int{1, 2, 3}, []int{0, 600, 1200}, []int{0, 600, 1200})
	tripB = datastructure.NewTrip("B", "R2", []int{3, 4}, []int{1300, 1900}, []int{1300, 1900})
	tripC = datastructure.NewTrip("C", "R3", []int{5, 6}, []int{2000, 2600}, []int{2000, 2600})
)

func newResolver(rules []datastructure.ConstrainedTransfer) *transfers.Resolver[*datastructure.Trip] {
	return transfers.NewResolver[*datastructure.Trip](transfers.NewTransferTable(rules),
		footpaths{4: {{ToStop: 5, Duration: 90}}})
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, transferoptimization.Score(nil))
	assert.Equal(t, 1, transferoptimization.Score(&datastructure.ConstrainedTransfer{Priority: datastructure.Preferred}))
	assert.Equal(t, 0, transferoptimization.Score(&datastructure.ConstrainedTransfer{Priority: datastructure.Recommended}))
	assert.Equal(t, 110, transferoptimization.Score(&datastructure.ConstrainedTransfer{
		Priority: datastructure.Allowed, StaySeated: true, Guaranteed: true}))
	assert.Equal(t, -1000, transferoptimization.Score(&datastructure.ConstrainedTransfer{Priority: datastructure.NotAllowed}))
}

func TestPriorityCostCalculator(t *testing.T) {
	rules := []datastructure.ConstrainedTransfer{
		{
			From:            datastructure.TransferPoint{Stop: 3, TripID: "A", StopPosition: 2},
			To:              datastructure.TransferPoint{Stop: 3, TripID: "B", StopPosition: 0},
			Priority:        datastructure.Preferred,
			Guaranteed:      true,
			MinTransferTime: -1,
		},
	}
	calc := transferoptimization.NewPriorityCostCalculator(newResolver(rules))

	path := []leg{
		{Trip: tripA, BoardPos: 0, AlightPos: 2},
		{Trip: tripB, BoardPos: 0, AlightPos: 1},
		{Trip: tripC, BoardPos: 0, AlightPos: 1},
	}
	cost, err := calc.Cost(path)
	require.NoError(t, err)
	assert.Equal(t, 11, cost)

	_, err = calc.Cost([]leg{{Trip: tripA, BoardPos: 2, AlightPos: 1}})
	assert.ErrorIs(t, err, server.ErrContractViolation)
}

func TestResolvePath(t *testing.T) {
	resolved, err := transferoptimization.ResolvePath(newResolver(nil), []leg{
		{Trip: tripB, BoardPos: 0, AlightPos: 1},
		{Trip: tripC, BoardPos: 0, AlightPos: 1},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].Constrained)
	assert.Equal(t, datastructure.Allowed, resolved[0].Edge.Priority)
	assert.Equal(t, 90, resolved[0].Edge.EffectiveDuration())
	assert.Nil(t, resolved[0].Edge.Constraint)
}

func TestResolvePaths(t *testing.T) {
	resolver := newResolver([]datastructure.ConstrainedTransfer{{
		From:            datastructure.TransferPoint{Stop: 4},
		To:              datastructure.TransferPoint{Stop: 5},
		Priority:        datastructure.Recommended,
		MinTransferTime: 120,
	}})
	paths := [][]leg{
		{{Trip: tripA, BoardPos: 0, AlightPos: 2}, {Trip: tripB, BoardPos: 0, AlightPos: 1}},
		{{Trip: tripB, BoardPos: 0, AlightPos: 1}, {Trip: tripC, BoardPos: 0, AlightPos: 1}},
		{{Trip: tripC, BoardPos: 0, AlightPos: 1}},
	}

	res, err := transferoptimization.ResolvePaths(context.Background(), resolver, paths, 2)
	require.NoError(t, err)
	require.Len(t, res, 3)

	require.Len(t, res[0], 1)
	assert.False(t, res[0][0].Constrained)
	assert.True(t, res[0][0].Edge.SameStop())

	require.Len(t, res[1], 1)
	assert.True(t, res[1][0].Constrained)
	assert.Equal(t, datastructure.Recommended, res[1][0].Edge.Priority)
	assert.Equal(t, 120, res[1][0].Edge.EffectiveDuration())

	assert.Empty(t, res[2])
}

func TestResolvePathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := [][]leg{{{Trip: tripA, BoardPos: 0, AlightPos: 2}, {Trip: tripB, BoardPos: 0, AlightPos: 1}}}
	_, err := transferoptimization.ResolvePaths(ctx, newResolver(nil), paths, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
