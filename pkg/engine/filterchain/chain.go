package filterchain

import (
	"lintang/transitx/pkg/datastructure"
)

type Result struct {
	Kept    []*datastructure.Itinerary
	Removed map[string][]*datastructure.Itinerary
}

func (r Result) NumRemoved() int {
	n := 0
	for _, its := range r.Removed {
		n += len(its)
	}
	return n
}

// Chain runs flaggers in order. Each flagger only sees the itineraries the previous ones kept.
type Chain struct {
	flaggers []ItineraryDeletionFlagger
}

func NewChain(flaggers ...ItineraryDeletionFlagger) *Chain {
	return &Chain{flaggers: flaggers}
}

func (c *Chain) Filter(itineraries []*datastructure.Itinerary) Result {
	kept := make([]*datastructure.Itinerary, len(itineraries))
	copy(kept, itineraries)
	res := Result{Removed: make(map[string][]*datastructure.Itinerary)}

	for _, f := range c.flaggers {
		flagged := f.FlagForRemoval(kept)
		if len(flagged) == 0 {
			continue
		}
		remove := make(map[*datastructure.Itinerary]struct{}, len(flagged))
		for _, it := range flagged {
			remove[it] = struct{}{}
		}

		next := kept[:0:0]
		for _, it := range kept {
			if _, ok := remove[it]; ok {
				res.Removed[f.Name()] = append(res.Removed[f.Name()], it)
				continue
			}
			next = append(next, it)
		}
		kept = next
	}

	res.Kept = kept
	return res
}
