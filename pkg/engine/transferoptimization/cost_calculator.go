package transferoptimization

import (
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"
)

const (
	staySeatedScore = 100
	guaranteedScore = 10
	notAllowedScore = -1000
)

// TransitLeg is one ride of a finished path: board Trip at BoardPos, alight at AlightPos.
type TransitLeg[T datastructure.TripSchedule] struct {
	Trip      T
	BoardPos  int
	AlightPos int
}

// ResolvedTransfer is the realised connection between two adjacent legs.
type ResolvedTransfer[T datastructure.TripSchedule] struct {
	Edge        datastructure.TransferEdge[T]
	Constrained bool
}

func priorityScore(p datastructure.TransferPriority) int {
	if !p.IsAllowed() {
		return notAllowedScore
	}
	return p.Rank()
}

// Score of a single constrained transfer, higher is better. No rule scores 0.
func Score(rule *datastructure.ConstrainedTransfer) int {
	if rule == nil {
		return 0
	}
	score := priorityScore(rule.Priority)
	if rule.StaySeated {
		score += staySeatedScore
	}
	if rule.Guaranteed {
		score += guaranteedScore
	}
	return score
}

// PriorityCostCalculator ranks paths with the same arrival by the transfers they use.
type PriorityCostCalculator[T datastructure.TripSchedule] struct {
	resolver *transfers.Resolver[T]
}

func NewPriorityCostCalculator[T datastructure.TripSchedule](resolver *transfers.Resolver[T]) *PriorityCostCalculator[T] {
	return &PriorityCostCalculator[T]{resolver: resolver}
}

func (c *PriorityCostCalculator[T]) Cost(path []TransitLeg[T]) (int, error) {
	resolved, err := ResolvePath(c.resolver, path)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range resolved {
		total += Score(r.Edge.Constraint)
	}
	return total, nil
}

// ResolvePath resolves every adjacent pair of legs. Pairs without a rule get the default
// unconstrained transfer.
func ResolvePath[T datastructure.TripSchedule](resolver *transfers.Resolver[T], path []TransitLeg[T]) ([]ResolvedTransfer[T], error) {
	for i, leg := range path {
		if leg.BoardPos > leg.AlightPos {
			return nil, server.WrapErrorf(nil, server.ErrContractViolation,
				"leg %d alights at %d before boarding at %d on trip %s", i, leg.AlightPos, leg.BoardPos, leg.Trip.TripID())
		}
	}
	if len(path) < 2 {
		return []ResolvedTransfer[T]{}, nil
	}

	res := make([]ResolvedTransfer[T], 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		edge, found, err := resolver.Resolve(from.Trip, from.AlightPos, to.Trip, to.BoardPos)
		if err != nil {
			return nil, err
		}
		if !found {
			edge, err = resolver.DefaultTransfer(from.Trip, from.AlightPos, to.Trip, to.BoardPos)
			if err != nil {
				return nil, err
			}
		}
		res = append(res, ResolvedTransfer[T]{Edge: edge, Constrained: found})
	}
	return res, nil
}
