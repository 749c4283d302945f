package snapshot

import (
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"
)

// Network is one immutable, versioned transit network. Call Build before sharing it.
type Network struct {
	Version         string                              `json:"version"`
	Stops           []datastructure.Stop                `json:"stops"`
	Trips           []datastructure.Trip                `json:"trips"`
	FootpathsByStop [][]datastructure.Footpath          `json:"footpaths,omitempty"`
	Transfers       []datastructure.ConstrainedTransfer `json:"transfers,omitempty"`

	tripByID map[string]*datastructure.Trip
	stopByID map[string]int
	table    *transfers.TransferTable
	built    bool
}

// Build validates the network and derives its indexes and transfer table.
func (n *Network) Build() error {
	n.stopByID = make(map[string]int, len(n.Stops))
	for i, s := range n.Stops {
		if s.Index != i {
			return server.WrapErrorf(nil, server.ErrContractViolation, "stop %s has index %d at position %d", s.ID, s.Index, i)
		}
		if _, ok := n.stopByID[s.ID]; ok {
			return server.WrapErrorf(nil, server.ErrConflict, "duplicate stop id %s", s.ID)
		}
		n.stopByID[s.ID] = i
	}

	n.tripByID = make(map[string]*datastructure.Trip, len(n.Trips))
	for i := range n.Trips {
		trip := &n.Trips[i]
		if err := trip.Validate(); err != nil {
			return server.WrapErrorf(err, server.ErrContractViolation, "invalid trip at position %d", i)
		}
		for pos, stop := range trip.Stops {
			if !n.validStop(stop) {
				return server.WrapErrorf(nil, server.ErrContractViolation, "trip %s: unknown stop %d at position %d", trip.ID, stop, pos)
			}
		}
		if _, ok := n.tripByID[trip.ID]; ok {
			return server.WrapErrorf(nil, server.ErrConflict, "duplicate trip id %s", trip.ID)
		}
		n.tripByID[trip.ID] = trip
	}

	if len(n.FootpathsByStop) > len(n.Stops) {
		return server.WrapErrorf(nil, server.ErrContractViolation, "%d footpath lists for %d stops", len(n.FootpathsByStop), len(n.Stops))
	}
	for from, fps := range n.FootpathsByStop {
		for _, fp := range fps {
			if !n.validStop(fp.ToStop) || fp.Duration < 0 {
				return server.WrapErrorf(nil, server.ErrContractViolation, "invalid footpath %d -> %d (%ds)", from, fp.ToStop, fp.Duration)
			}
		}
	}

	for i, r := range n.Transfers {
		if !n.validStop(r.From.Stop) || !n.validStop(r.To.Stop) {
			return server.WrapErrorf(nil, server.ErrContractViolation, "transfer %d references unknown stop: %s", i, r.String())
		}
	}
	n.table = transfers.NewTransferTable(n.Transfers)
	n.built = true
	return nil
}

func (n *Network) validStop(stop int) bool {
	return stop >= 0 && stop < len(n.Stops)
}

func (n *Network) Built() bool {
	return n.built
}

func (n *Network) Trip(id string) (*datastructure.Trip, bool) {
	t, ok := n.tripByID[id]
	return t, ok
}

func (n *Network) StopByID(id string) (datastructure.Stop, bool) {
	i, ok := n.stopByID[id]
	if !ok {
		return datastructure.Stop{}, false
	}
	return n.Stops[i], true
}

// Footpaths implements transfers.StandardTransfers.
func (n *Network) Footpaths(stop int) []datastructure.Footpath {
	if stop < 0 || stop >= len(n.FootpathsByStop) {
		return nil
	}
	return n.FootpathsByStop[stop]
}

func (n *Network) TransferTable() *transfers.TransferTable {
	return n.table
}

type Stats struct {
	Version   string `json:"version"`
	Stops     int    `json:"stops"`
	Trips     int    `json:"trips"`
	Footpaths int    `json:"footpaths"`
	Transfers int    `json:"transfers"`
}

func (n *Network) Stats() Stats {
	fps := 0
	for _, f := range n.FootpathsByStop {
		fps += len(f)
	}
	return Stats{
		Version:   n.Version,
		Stops:     len(n.Stops),
		Trips:     len(n.Trips),
		Footpaths: fps,
		Transfers: n.table.Len(),
	}
}
