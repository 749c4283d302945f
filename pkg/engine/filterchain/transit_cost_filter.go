package filterchain

import (
	"math"
	"time"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"
)

// ItineraryDeletionFlagger decides which itineraries of a result set should be removed.
// Implementations never mutate the itineraries.
type ItineraryDeletionFlagger interface {
	Name() string
	FlagForRemoval(itineraries []*datastructure.Itinerary) []*datastructure.Itinerary
}

// TransitGeneralizedCostFilter removes transit itineraries whose generalized cost exceeds
// the cost limit of another transit itinerary plus a wait allowance. The allowance grows
// with how far apart the two itineraries are in time, so a costlier itinerary leaving at a
// clearly different time survives.
type TransitGeneralizedCostFilter struct {
	costLimit  CostLimitFunction
	waitFactor float64
}

func NewTransitGeneralizedCostFilter(costLimit CostLimitFunction, waitFactor float64) (*TransitGeneralizedCostFilter, error) {
	if costLimit == nil {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "cost limit function is required")
	}
	if waitFactor < 0 || math.IsNaN(waitFactor) || math.IsInf(waitFactor, 0) {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "wait factor must be a finite number >= 0, got %v", waitFactor)
	}
	if v, ok := costLimit.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &TransitGeneralizedCostFilter{costLimit: costLimit, waitFactor: waitFactor}, nil
}

func (f *TransitGeneralizedCostFilter) Name() string {
	return "transit-cost-filter"
}

// FlagForRemoval returns the dominated itineraries in input order.
func (f *TransitGeneralizedCostFilter) FlagForRemoval(itineraries []*datastructure.Itinerary) []*datastructure.Itinerary {
	transit := make([]*datastructure.Itinerary, 0, len(itineraries))
	for _, it := range itineraries {
		if it.HasTransit() {
			transit = append(transit, it)
		}
	}

	flagged := make([]*datastructure.Itinerary, 0)
	for _, it := range transit {
		for _, t := range transit {
			if t == it {
				continue
			}
			if it.GeneralizedCost > f.costLimit.Calculate(t.GeneralizedCost)+f.waitCost(t, it) {
				flagged = append(flagged, it)
				break
			}
		}
	}
	return flagged
}

// waitCost = waitFactor * max(|Δstart|, |Δend|), dalam detik penuh (pecahan detik dibuang)
func (f *TransitGeneralizedCostFilter) waitCost(a, b *datastructure.Itinerary) float64 {
	dStart := wholeSeconds(a.StartTime.Sub(b.StartTime))
	dEnd := wholeSeconds(a.EndTime.Sub(b.EndTime))
	return f.waitFactor * float64(max(dStart, dEnd))
}

func wholeSeconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if s < 0 {
		return -s
	}
	return s
}
