package transferoptimization_test

import (
	"testing"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transferoptimization"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A: 1 -> 2 -> 3, B: 2 -> 3 -> 4 -> 5, C: 4 -> 5 -> 6. A-B can transfer at 2 or 3, B-C at 4 or 5.
var (
	permA = datastructure.NewTrip("A", "R1", []int{1, 2, 3}, []int{0, 600, 1200}, []int{0, 600, 1200})
	permB = datastructure.NewTrip("B", "R2", []int{2, 3, 4, 5}, []int{700, 1300, 1900, 2500}, []int{700, 1300, 1900, 2500})
	permC = datastructure.NewTrip("C", "R3", []int{4, 5, 6}, []int{2000, 2600, 3200}, []int{2000, 2600, 3200})
)

func newOptimizer(t *testing.T, rules []datastructure.ConstrainedTransfer) (*transfers.LookupService[*datastructure.Trip], *transferoptimization.PriorityCostCalculator[*datastructure.Trip]) {
	t.Helper()
	table := transfers.NewTransferTable(rules)
	lookup, err := transfers.NewLookupService[*datastructure.Trip](table, footpaths{}, transfers.Options{TransitSlack: 60})
	require.NoError(t, err)
	return lookup, transferoptimization.NewPriorityCostCalculator(transfers.NewResolver[*datastructure.Trip](table, footpaths{}))
}

func threeRides() []leg {
	return []leg{
		{Trip: permA, BoardPos: 0, AlightPos: 2},
		{Trip: permB, BoardPos: 1, AlightPos: 2},
		{Trip: permC, BoardPos: 0, AlightPos: 2},
	}
}

func transferStops(p transferoptimization.PathPermutation[*datastructure.Trip]) []int {
	res := make([]int, 0, len(p.Transfers))
	for _, tx := range p.Transfers {
		res = append(res, tx.To.Stop)
	}
	return res
}

func TestFindAllPathPermutations(t *testing.T) {
	lookup, _ := newOptimizer(t, nil)

	perms, err := transferoptimization.FindAllPathPermutations(lookup, threeRides())
	require.NoError(t, err)
	require.Len(t, perms, 4)

	got := make([][]int, 0, len(perms))
	for _, p := range perms {
		got = append(got, transferStops(p))
		require.Len(t, p.Legs, 3)
		assert.Equal(t, 0, p.Legs[0].BoardPos)
		assert.Equal(t, 2, p.Legs[2].AlightPos)
		for i, tx := range p.Transfers {
			assert.Equal(t, p.Legs[i].AlightPos, tx.From.StopPosition)
			assert.Equal(t, p.Legs[i+1].BoardPos, tx.To.StopPosition)
			assert.Less(t, p.Legs[i+1].BoardPos, p.Legs[i+1].AlightPos)
		}
	}
	assert.Equal(t, [][]int{{2, 4}, {2, 5}, {3, 4}, {3, 5}}, got)
}

func TestFindAllPathPermutationsEdgeCases(t *testing.T) {
	lookup, _ := newOptimizer(t, nil)

	t.Run("single ride", func(t *testing.T) {
		perms, err := transferoptimization.FindAllPathPermutations(lookup, []leg{{Trip: permA, BoardPos: 0, AlightPos: 2}})
		require.NoError(t, err)
		require.Len(t, perms, 1)
		assert.Empty(t, perms[0].Transfers)
	})

	t.Run("trips that never meet", func(t *testing.T) {
		_, err := transferoptimization.FindAllPathPermutations(lookup, []leg{
			{Trip: permA, BoardPos: 0, AlightPos: 2},
			{Trip: permC, BoardPos: 0, AlightPos: 2},
		})
		assert.ErrorIs(t, err, server.ErrNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := transferoptimization.FindAllPathPermutations(lookup, nil)
		assert.ErrorIs(t, err, server.ErrContractViolation)
	})

	t.Run("alight before board", func(t *testing.T) {
		_, err := transferoptimization.FindAllPathPermutations(lookup, []leg{{Trip: permA, BoardPos: 2, AlightPos: 0}})
		assert.ErrorIs(t, err, server.ErrContractViolation)
	})
}

func TestOptimizePath(t *testing.T) {
	t.Run("without rules the first permutation wins", func(t *testing.T) {
		lookup, calc := newOptimizer(t, nil)
		best, err := transferoptimization.OptimizePath(lookup, calc, threeRides())
		require.NoError(t, err)
		assert.Equal(t, 4, best.Permutations)
		assert.Equal(t, 0, best.PriorityCost)
		assert.Equal(t, []int{2, 4}, transferStops(best.PathPermutation))
	})

	t.Run("constrained transfers decide the places", func(t *testing.T) {
		rules := []datastructure.ConstrainedTransfer{
			{
				From:            datastructure.TransferPoint{Stop: 3, TripID: "A", StopPosition: 2},
				To:              datastructure.TransferPoint{Stop: 3, TripID: "B", StopPosition: 1},
				Priority:        datastructure.Preferred,
				Guaranteed:      true,
				MinTransferTime: -1,
			},
			{
				From:            datastructure.TransferPoint{Stop: 5, RouteID: "R2"},
				To:              datastructure.TransferPoint{Stop: 5},
				Priority:        datastructure.Preferred,
				MinTransferTime: -1,
			},
		}
		lookup, calc := newOptimizer(t, rules)
		best, err := transferoptimization.OptimizePath(lookup, calc, threeRides())
		require.NoError(t, err)
		assert.Equal(t, 12, best.PriorityCost)
		assert.Equal(t, []int{3, 5}, transferStops(best.PathPermutation))
		assert.Equal(t, leg{Trip: permB, BoardPos: 1, AlightPos: 3}, best.Legs[1])
		assert.Equal(t, leg{Trip: permC, BoardPos: 1, AlightPos: 2}, best.Legs[2])
	})
}

func TestLocateLeg(t *testing.T) {
	loop := datastructure.NewTrip("L", "R9", []int{3, 5, 3, 6}, []int{0, 100, 200, 300}, []int{0, 100, 200, 300})

	l, err := transferoptimization.LocateLeg(loop, 3, 150, 6, 300)
	require.NoError(t, err)
	assert.Equal(t, leg{Trip: loop, BoardPos: 2, AlightPos: 3}, l)

	l, err = transferoptimization.LocateLeg(loop, 3, 0, 3, 250)
	require.NoError(t, err)
	assert.Equal(t, leg{Trip: loop, BoardPos: 0, AlightPos: 2}, l)

	_, err = transferoptimization.LocateLeg(loop, 6, 0, 3, 250)
	assert.ErrorIs(t, err, server.ErrContractViolation)

	_, err = transferoptimization.LocateLeg(loop, 9, 0, 6, 300)
	assert.ErrorIs(t, err, server.ErrNotFound)
}
