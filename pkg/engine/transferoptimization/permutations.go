package transferoptimization

import (
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"
)

// PathPermutation is one placement of the transfers of a path. Transfers[i] connects Legs[i]
// to Legs[i+1].
type PathPermutation[T datastructure.TripSchedule] struct {
	Legs      []TransitLeg[T]
	Transfers []datastructure.TransferEdge[T]
}

// OptimizedPath is the best permutation of a path and how many were compared.
type OptimizedPath[T datastructure.TripSchedule] struct {
	PathPermutation[T]
	PriorityCost int
	Permutations int
}

// LocateLeg finds the board and alight positions of a ride on trip. The time bounds pick the
// visit when the pattern passes the same stop more than once.
func LocateLeg[T datastructure.TripSchedule](trip T, boardStop, boardTime, alightStop, alightTime int) (TransitLeg[T], error) {
	board := transfers.FindDepartureStopPosition(trip, boardTime, boardStop)
	if board < 0 {
		return TransitLeg[T]{}, server.WrapErrorf(nil, server.ErrNotFound,
			"trip %s does not depart stop %d at or after %s", trip.TripID(), boardStop, datastructure.ServiceTime(boardTime))
	}
	alight := transfers.FindArrivalStopPosition(trip, alightTime, alightStop)
	if alight < 0 {
		return TransitLeg[T]{}, server.WrapErrorf(nil, server.ErrNotFound,
			"trip %s does not arrive at stop %d at or before %s", trip.TripID(), alightStop, datastructure.ServiceTime(alightTime))
	}
	if alight <= board {
		return TransitLeg[T]{}, server.WrapErrorf(nil, server.ErrContractViolation,
			"trip %s: alight position %d is not after board position %d", trip.TripID(), alight, board)
	}
	return TransitLeg[T]{Trip: trip, BoardPos: board, AlightPos: alight}, nil
}

// FindAllPathPermutations generates every combination of transfer places for path. With trips
// 1, 2 and 3, transfer places {A, B} between 1 and 2 and {C, D} between 2 and 3 it returns
// A-C, A-D, B-C and B-D, minus combinations that board a trip after alighting it. The first
// board position and the last alight position are kept.
func FindAllPathPermutations[T datastructure.TripSchedule](lookup *transfers.LookupService[T], path []TransitLeg[T]) ([]PathPermutation[T], error) {
	if len(path) == 0 {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation, "path without transit legs")
	}
	for i, leg := range path {
		if !datastructure.InRange(leg.Trip, leg.BoardPos) || !datastructure.InRange(leg.Trip, leg.AlightPos) || leg.BoardPos > leg.AlightPos {
			return nil, server.WrapErrorf(nil, server.ErrContractViolation,
				"leg %d: invalid positions %d -> %d on trip %s", i, leg.BoardPos, leg.AlightPos, leg.Trip.TripID())
		}
	}
	if len(path) == 1 {
		legs := []TransitLeg[T]{path[0]}
		return []PathPermutation[T]{{Legs: legs, Transfers: []datastructure.TransferEdge[T]{}}}, nil
	}

	possible, err := possibleTransfers(lookup, path)
	if err != nil {
		return nil, err
	}
	return transferCombinations(path, possible), nil
}

// possibleTransfers mencari transfer tiap pasangan leg. Keberangkatan paling awal di trip
// berikutnya jadi titik awal pencarian pasangan selanjutnya.
func possibleTransfers[T datastructure.TripSchedule](lookup *transfers.LookupService[T], path []TransitLeg[T]) ([][]datastructure.TransferEdge[T], error) {
	res := make([][]datastructure.TransferEdge[T], 0, len(path)-1)
	departure := datastructure.DepartureAt(path[0].Trip, path[0].BoardPos)

	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		edges, err := lookup.FindTransfers(from.Trip, departure, to.Trip)
		if err != nil {
			return nil, err
		}
		edges = datastructure.BestPerDestination(edges)
		if len(edges) == 0 {
			return nil, server.WrapErrorf(nil, server.ErrNotFound,
				"no transfer from trip %s to trip %s after %s", from.Trip.TripID(), to.Trip.TripID(), departure)
		}
		res = append(res, edges)

		departure = edges[0].To
		for _, e := range edges[1:] {
			if e.To.Time < departure.Time {
				departure = e.To
			}
		}
	}
	return res, nil
}

// transferCombinations dibangun dari leg terakhir ke depan.
func transferCombinations[T datastructure.TripSchedule](path []TransitLeg[T], possible [][]datastructure.TransferEdge[T]) []PathPermutation[T] {
	tails := []PathPermutation[T]{{Legs: []TransitLeg[T]{path[len(path)-1]}}}

	for i := len(possible) - 1; i >= 0; i-- {
		next := make([]PathPermutation[T], 0, len(possible[i])*len(tails))
		for _, tx := range possible[i] {
			from := path[i]
			if i == 0 && !datastructure.DepartureAt(from.Trip, from.BoardPos).Before(tx.From) {
				continue
			}
			from.AlightPos = tx.From.StopPosition

			for _, tail := range tails {
				head := tail.Legs[0]
				if !tx.To.Before(datastructure.ArrivalAt(head.Trip, head.AlightPos)) {
					continue
				}
				head.BoardPos = tx.To.StopPosition

				legs := make([]TransitLeg[T], 0, len(tail.Legs)+1)
				legs = append(legs, from, head)
				legs = append(legs, tail.Legs[1:]...)
				txs := make([]datastructure.TransferEdge[T], 0, len(tail.Transfers)+1)
				txs = append(txs, tx)
				txs = append(txs, tail.Transfers...)
				next = append(next, PathPermutation[T]{Legs: legs, Transfers: txs})
			}
		}
		tails = next
	}
	return tails
}

// OptimizePath picks the permutation with the highest priority cost. Ties go to the one with
// less total transfer time, then to the first generated.
func OptimizePath[T datastructure.TripSchedule](lookup *transfers.LookupService[T], calc *PriorityCostCalculator[T], path []TransitLeg[T]) (OptimizedPath[T], error) {
	perms, err := FindAllPathPermutations(lookup, path)
	if err != nil {
		return OptimizedPath[T]{}, err
	}
	if len(perms) == 0 {
		return OptimizedPath[T]{}, server.WrapErrorf(nil, server.ErrNotFound, "no feasible transfer combination for path")
	}

	best := -1
	bestCost, bestDuration := 0, 0
	for i, p := range perms {
		cost, err := calc.Cost(p.Legs)
		if err != nil {
			return OptimizedPath[T]{}, err
		}
		d := transferDuration(p.Transfers)
		if best < 0 || cost > bestCost || (cost == bestCost && d < bestDuration) {
			best, bestCost, bestDuration = i, cost, d
		}
	}
	return OptimizedPath[T]{
		PathPermutation: perms[best],
		PriorityCost:    bestCost,
		Permutations:    len(perms),
	}, nil
}

func transferDuration[T datastructure.TripSchedule](txs []datastructure.TransferEdge[T]) int {
	total := 0
	for _, tx := range txs {
		total += tx.EffectiveDuration()
	}
	return total
}
