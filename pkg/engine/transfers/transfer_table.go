package transfers

import (
	"lintang/transitx/pkg/datastructure"
)

type stopPairKey struct {
	from, to int
}

type tripPairKey struct {
	from, to string
}

// TransferTable holds the constrained transfers of one network snapshot. It is built once and
// never mutated afterwards, so it is safe for concurrent readers.
type TransferTable struct {
	rules   []datastructure.ConstrainedTransfer
	byStops map[stopPairKey][]*datastructure.ConstrainedTransfer
	byTrips map[tripPairKey][]*datastructure.ConstrainedTransfer
}

func NewTransferTable(rules []datastructure.ConstrainedTransfer) *TransferTable {
	t := &TransferTable{
		rules:   make([]datastructure.ConstrainedTransfer, len(rules)),
		byStops: make(map[stopPairKey][]*datastructure.ConstrainedTransfer),
		byTrips: make(map[tripPairKey][]*datastructure.ConstrainedTransfer),
	}
	copy(t.rules, rules)

	for i := range t.rules {
		r := &t.rules[i]
		sk := stopPairKey{r.From.Stop, r.To.Stop}
		t.byStops[sk] = append(t.byStops[sk], r)
		if r.From.IsTripPoint() && r.To.IsTripPoint() {
			tk := tripPairKey{r.From.TripID, r.To.TripID}
			t.byTrips[tk] = append(t.byTrips[tk], r)
		}
	}
	return t
}

func (t *TransferTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

func (t *TransferTable) tripToTrip(fromTripID, toTripID string) []*datastructure.ConstrainedTransfer {
	if t == nil {
		return nil
	}
	return t.byTrips[tripPairKey{fromTripID, toTripID}]
}

// FindRule returns the most specific rule governing the connection, nil if none applies.
// Positions must be in range. Ties on specificity keep the rule registered first.
func FindRule[T datastructure.TripSchedule](t *TransferTable, fromTrip T, fromPos int, toTrip T, toPos int) *datastructure.ConstrainedTransfer {
	if t == nil {
		return nil
	}
	candidates := t.byStops[stopPairKey{fromTrip.StopIndex(fromPos), toTrip.StopIndex(toPos)}]

	var best *datastructure.ConstrainedTransfer
	bestRank := -1
	for _, c := range candidates {
		if !datastructure.Matches(c, fromTrip, fromPos, toTrip, toPos) {
			continue
		}
		if rank := c.SpecificityRanking(); rank > bestRank {
			best = c
			bestRank = rank
		}
	}
	return best
}
