package filterchain

import (
	"fmt"

	"lintang/transitx/pkg/datastructure"
)

// MaxLimitFilter keeps the first maxItineraries itineraries and flags the rest.
type MaxLimitFilter struct {
	name           string
	maxItineraries int
}

func NewMaxLimitFilter(name string, maxItineraries int) *MaxLimitFilter {
	return &MaxLimitFilter{name: name, maxItineraries: maxItineraries}
}

func (f *MaxLimitFilter) Name() string {
	if f.name == "" {
		return fmt.Sprintf("max-limit-%d", f.maxItineraries)
	}
	return f.name
}

func (f *MaxLimitFilter) FlagForRemoval(itineraries []*datastructure.Itinerary) []*datastructure.Itinerary {
	if f.maxItineraries < 0 || len(itineraries) <= f.maxItineraries {
		return nil
	}
	flagged := make([]*datastructure.Itinerary, len(itineraries)-f.maxItineraries)
	copy(flagged, itineraries[f.maxItineraries:])
	return flagged
}
