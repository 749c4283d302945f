package transfers

import (
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"
)

// Resolver re-derives, after a path is built, which constrained transfer governs the
// connection between two adjacent trip legs. The search does not keep constraints while
// expanding, so this lookup happens once per transfer of a finished path.
type Resolver[T datastructure.TripSchedule] struct {
	table *TransferTable
	std   StandardTransfers
}

func NewResolver[T datastructure.TripSchedule](table *TransferTable, std StandardTransfers) *Resolver[T] {
	return &Resolver[T]{table: table, std: std}
}

// Resolve returns the constrained transfer for alighting fromTrip at fromStopPosition and
// boarding toTrip at toStopPosition. found is false when no rule applies, the caller then
// uses the default unconstrained transfer. A NOT_ALLOWED rule is returned as is.
func (r *Resolver[T]) Resolve(fromTrip T, fromStopPosition int, toTrip T, toStopPosition int) (edge datastructure.TransferEdge[T], found bool, err error) {
	if !datastructure.InRange(fromTrip, fromStopPosition) {
		return edge, false, server.WrapErrorf(nil, server.ErrContractViolation,
			"from stop position %d out of range for trip %s (%d stops)", fromStopPosition, fromTrip.TripID(), fromTrip.NumberOfStops())
	}
	if !datastructure.InRange(toTrip, toStopPosition) {
		return edge, false, server.WrapErrorf(nil, server.ErrContractViolation,
			"to stop position %d out of range for trip %s (%d stops)", toStopPosition, toTrip.TripID(), toTrip.NumberOfStops())
	}

	rule := FindRule(r.table, fromTrip, fromStopPosition, toTrip, toStopPosition)
	if rule == nil {
		return edge, false, nil
	}

	from := datastructure.ArrivalAt(fromTrip, fromStopPosition)
	to := datastructure.DepartureAt(toTrip, toStopPosition)
	duration := footpathDuration(r.std, from.Stop, to.Stop)
	if rule.HasMinTransferTime() {
		duration = max(duration, rule.MinTransferTime)
	}

	return datastructure.TransferEdge[T]{
		From:       from,
		To:         to,
		Priority:   rule.Priority,
		Duration:   duration,
		Constraint: rule,
	}, true, nil
}

// DefaultTransfer is the unconstrained connection used when Resolve finds no rule.
func (r *Resolver[T]) DefaultTransfer(fromTrip T, fromStopPosition int, toTrip T, toStopPosition int) (datastructure.TransferEdge[T], error) {
	if !datastructure.InRange(fromTrip, fromStopPosition) || !datastructure.InRange(toTrip, toStopPosition) {
		return datastructure.TransferEdge[T]{}, server.WrapErrorf(nil, server.ErrContractViolation,
			"stop positions %d/%d out of range for trips %s/%s", fromStopPosition, toStopPosition, fromTrip.TripID(), toTrip.TripID())
	}
	from := datastructure.ArrivalAt(fromTrip, fromStopPosition)
	to := datastructure.DepartureAt(toTrip, toStopPosition)
	return datastructure.TransferEdge[T]{
		From:     from,
		To:       to,
		Priority: datastructure.Allowed,
		Duration: footpathDuration(r.std, from.Stop, to.Stop),
	}, nil
}
