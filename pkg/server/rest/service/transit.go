package service

import (
	"context"
	"sync"
	"time"

	"lintang/transitx/pkg/config"
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/filterchain"
	"lintang/transitx/pkg/engine/pathstate"
	"lintang/transitx/pkg/engine/transferoptimization"
	"lintang/transitx/pkg/engine/transfers"
	"lintang/transitx/pkg/server"
	"lintang/transitx/pkg/snapshot"
)

type (
	Edge = datastructure.TransferEdge[*datastructure.Trip]
	Leg  = transferoptimization.TransitLeg[*datastructure.Trip]
)

// LegRef is a ride of a finished path given by trip id.
type LegRef struct {
	TripID    string
	BoardPos  int
	AlightPos int
}

type PathTransfers struct {
	Transfers    []TransferView `json:"transfers"`
	PriorityCost int            `json:"priority_cost"`
}

// TransferView is a transfer edge with stop ids of the snapshot it was computed on.
type TransferView struct {
	FromTripID       string                         `json:"from_trip"`
	FromStopPosition int                            `json:"from_stop_position"`
	FromStopID       string                         `json:"from_stop"`
	ArrivalTime      string                         `json:"arrival_time"`
	ToTripID         string                         `json:"to_trip"`
	ToStopPosition   int                            `json:"to_stop_position"`
	ToStopID         string                         `json:"to_stop"`
	DepartureTime    string                         `json:"departure_time"`
	Priority         datastructure.TransferPriority `json:"priority"`
	Duration         int                            `json:"duration"`
	Constrained      bool                           `json:"constrained"`
	StaySeated       bool                           `json:"stay_seated,omitempty"`
	Guaranteed       bool                           `json:"guaranteed,omitempty"`
}

func newTransferView(n *snapshot.Network, e Edge) TransferView {
	v := TransferView{
		FromTripID:       e.From.Trip.TripID(),
		FromStopPosition: e.From.StopPosition,
		FromStopID:       n.Stops[e.From.Stop].ID,
		ArrivalTime:      datastructure.ServiceTime(e.From.Time),
		ToTripID:         e.To.Trip.TripID(),
		ToStopPosition:   e.To.StopPosition,
		ToStopID:         n.Stops[e.To.Stop].ID,
		DepartureTime:    datastructure.ServiceTime(e.To.Time),
		Priority:         e.Priority,
		Duration:         e.EffectiveDuration(),
		Constrained:      e.Constraint != nil,
	}
	if e.Constraint != nil {
		v.StaySeated = e.Constraint.StaySeated
		v.Guaranteed = e.Constraint.Guaranteed
	}
	return v
}

// LegLocator is a ride given by stop ids and times in seconds since the service day start.
type LegLocator struct {
	TripID     string
	BoardStop  string
	BoardTime  int
	AlightStop string
	AlightTime int
}

type LegView struct {
	TripID        string `json:"trip_id"`
	RouteID       string `json:"route_id"`
	BoardPos      int    `json:"board_pos"`
	BoardStopID   string `json:"board_stop"`
	DepartureTime string `json:"departure_time"`
	AlightPos     int    `json:"alight_pos"`
	AlightStopID  string `json:"alight_stop"`
	ArrivalTime   string `json:"arrival_time"`
}

func newLegView(n *snapshot.Network, l Leg) LegView {
	return LegView{
		TripID:        l.Trip.ID,
		RouteID:       l.Trip.Route,
		BoardPos:      l.BoardPos,
		BoardStopID:   n.Stops[l.Trip.StopIndex(l.BoardPos)].ID,
		DepartureTime: datastructure.ServiceTime(l.Trip.Departure(l.BoardPos)),
		AlightPos:     l.AlightPos,
		AlightStopID:  n.Stops[l.Trip.StopIndex(l.AlightPos)].ID,
		ArrivalTime:   datastructure.ServiceTime(l.Trip.Arrival(l.AlightPos)),
	}
}

// OptimizedPathView is the best transfer placement of a path. TransitState is the lineage
// after riding the legs, ready to be joined with a street phase.
type OptimizedPathView struct {
	Legs         []LegView
	Transfers    []TransferView
	PriorityCost int
	Permutations int
	TransitState *pathstate.PathState
}

// FilterParams per request. Nil fields use the configured defaults.
type FilterParams struct {
	CostLimitFunction *filterchain.LinearFunction
	WaitFactor        *float64
	MaxItineraries    *int
}

// boundEngine is the lookup state of one network snapshot. The lookup cache belongs to the
// snapshot it was filled from.
type boundEngine struct {
	network  *snapshot.Network
	lookup   *transfers.LookupService[*datastructure.Trip]
	resolver *transfers.Resolver[*datastructure.Trip]
	calc     *transferoptimization.PriorityCostCalculator[*datastructure.Trip]
}

type TransitService struct {
	store  *snapshot.Store
	engine config.EngineConfig
	filter config.FilterConfig

	mu    sync.Mutex
	bound *boundEngine
}

func NewTransitService(store *snapshot.Store, engine config.EngineConfig, filter config.FilterConfig) *TransitService {
	return &TransitService{store: store, engine: engine, filter: filter}
}

// current binds the request to the snapshot that is current right now.
func (s *TransitService) current() (*boundEngine, error) {
	n := s.store.Current()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil && s.bound.network == n {
		return s.bound, nil
	}

	lookup, err := transfers.NewLookupService[*datastructure.Trip](n.TransferTable(), n, transfers.Options{
		TransitSlack: s.engine.TransitSlack,
		CacheSize:    s.engine.LookupCacheSize,
	})
	if err != nil {
		return nil, err
	}
	resolver := transfers.NewResolver[*datastructure.Trip](n.TransferTable(), n)
	s.bound = &boundEngine{
		network:  n,
		lookup:   lookup,
		resolver: resolver,
		calc:     transferoptimization.NewPriorityCostCalculator(resolver),
	}
	return s.bound, nil
}

func (b *boundEngine) trip(id string) (*datastructure.Trip, error) {
	t, ok := b.network.Trip(id)
	if !ok {
		return nil, server.WrapErrorf(nil, server.ErrNotFound, "trip %s not found in network %s", id, b.network.Version)
	}
	return t, nil
}

func (b *boundEngine) stop(id string) (datastructure.Stop, error) {
	st, ok := b.network.StopByID(id)
	if !ok {
		return datastructure.Stop{}, server.WrapErrorf(nil, server.ErrNotFound, "stop %s not found in network %s", id, b.network.Version)
	}
	return st, nil
}

func (s *TransitService) FindTransfers(ctx context.Context, fromTripID string, fromPos int, toTripID string) ([]TransferView, error) {
	b, err := s.current()
	if err != nil {
		return nil, err
	}
	from, err := b.trip(fromTripID)
	if err != nil {
		return nil, err
	}
	to, err := b.trip(toTripID)
	if err != nil {
		return nil, err
	}
	if !datastructure.InRange(from, fromPos) {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation, "stop position %d out of range for trip %s", fromPos, fromTripID)
	}
	edges, err := b.lookup.FindTransfers(from, datastructure.DepartureAt(from, fromPos), to)
	if err != nil {
		return nil, err
	}
	res := make([]TransferView, 0, len(edges))
	for _, e := range edges {
		res = append(res, newTransferView(b.network, e))
	}
	return res, nil
}

// ResolveTransfer returns found=false, not an error, when no rule governs the connection.
func (s *TransitService) ResolveTransfer(ctx context.Context, fromTripID string, fromPos int, toTripID string, toPos int) (TransferView, bool, error) {
	b, err := s.current()
	if err != nil {
		return TransferView{}, false, err
	}
	from, err := b.trip(fromTripID)
	if err != nil {
		return TransferView{}, false, err
	}
	to, err := b.trip(toTripID)
	if err != nil {
		return TransferView{}, false, err
	}
	edge, found, err := b.resolver.Resolve(from, fromPos, to, toPos)
	if err != nil || !found {
		return TransferView{}, false, err
	}
	return newTransferView(b.network, edge), true, nil
}

// ResolvePaths resolves the transfers of finished paths and scores them by transfer priority.
func (s *TransitService) ResolvePaths(ctx context.Context, refs [][]LegRef) ([]PathTransfers, error) {
	b, err := s.current()
	if err != nil {
		return nil, err
	}
	paths := make([][]Leg, len(refs))
	for i, path := range refs {
		for _, l := range path {
			trip, err := b.trip(l.TripID)
			if err != nil {
				return nil, err
			}
			paths[i] = append(paths[i], Leg{Trip: trip, BoardPos: l.BoardPos, AlightPos: l.AlightPos})
		}
	}

	resolved, err := transferoptimization.ResolvePaths(ctx, b.resolver, paths, s.engine.ResolveWorkers)
	if err != nil {
		return nil, err
	}
	res := make([]PathTransfers, len(resolved))
	for i, rts := range resolved {
		pt := PathTransfers{Transfers: make([]TransferView, 0, len(rts))}
		for _, rt := range rts {
			pt.Transfers = append(pt.Transfers, newTransferView(b.network, rt.Edge))
			pt.PriorityCost += transferoptimization.Score(rt.Edge.Constraint)
		}
		res[i] = pt
	}
	return res, nil
}

// OptimizePath tries every combination of transfer places for a path and returns the one
// with the best transfer priority cost.
func (s *TransitService) OptimizePath(ctx context.Context, locs []LegLocator, serviceDay time.Time) (OptimizedPathView, error) {
	b, err := s.current()
	if err != nil {
		return OptimizedPathView{}, err
	}
	path := make([]Leg, 0, len(locs))
	for _, l := range locs {
		trip, err := b.trip(l.TripID)
		if err != nil {
			return OptimizedPathView{}, err
		}
		board, err := b.stop(l.BoardStop)
		if err != nil {
			return OptimizedPathView{}, err
		}
		alight, err := b.stop(l.AlightStop)
		if err != nil {
			return OptimizedPathView{}, err
		}
		leg, err := transferoptimization.LocateLeg(trip, board.Index, l.BoardTime, alight.Index, l.AlightTime)
		if err != nil {
			return OptimizedPathView{}, err
		}
		path = append(path, leg)
	}

	best, err := transferoptimization.OptimizePath(b.lookup, b.calc, path)
	if err != nil {
		return OptimizedPathView{}, err
	}
	state, err := rideLegs(b.network, best.Legs, serviceDay)
	if err != nil {
		return OptimizedPathView{}, err
	}

	res := OptimizedPathView{
		Legs:         make([]LegView, 0, len(best.Legs)),
		Transfers:    make([]TransferView, 0, len(best.Transfers)),
		PriorityCost: best.PriorityCost,
		Permutations: best.Permutations,
		TransitState: state,
	}
	for _, l := range best.Legs {
		res.Legs = append(res.Legs, newLegView(b.network, l))
	}
	for _, tx := range best.Transfers {
		res.Transfers = append(res.Transfers, newTransferView(b.network, tx))
	}
	return res, nil
}

// rideLegs replays boarding and alighting of every leg on a fresh state. The state ends on foot
// at the last alight stop.
func rideLegs(n *snapshot.Network, legs []Leg, serviceDay time.Time) (*pathstate.PathState, error) {
	st := pathstate.New(datastructure.ModeTransit)
	for _, l := range legs {
		board := n.Stops[l.Trip.StopIndex(l.BoardPos)]
		if err := st.Board(l.Trip.ID, l.Trip.Route, l.Trip.Pattern, board.Zone, serviceDay); err != nil {
			return nil, err
		}
		alight := n.Stops[l.Trip.StopIndex(l.AlightPos)]
		at := serviceDay.Add(time.Duration(l.Trip.Arrival(l.AlightPos)) * time.Second)
		if err := st.Alight(alight.ID, at); err != nil {
			return nil, err
		}
	}
	if err := st.SetMode(datastructure.ModeWalk); err != nil {
		return nil, err
	}
	return st.Freeze(), nil
}

// FilterItineraries runs the transit cost filter and then the max limit filter.
func (s *TransitService) FilterItineraries(ctx context.Context, its []*datastructure.Itinerary, p FilterParams) (filterchain.Result, error) {
	costLimit := s.filter.CostLimitFunction
	if p.CostLimitFunction != nil {
		costLimit = *p.CostLimitFunction
	}
	waitFactor := s.filter.WaitFactor
	if p.WaitFactor != nil {
		waitFactor = *p.WaitFactor
	}
	maxIts := s.filter.MaxItineraries
	if p.MaxItineraries != nil {
		maxIts = *p.MaxItineraries
	}

	costFilter, err := filterchain.NewTransitGeneralizedCostFilter(costLimit, waitFactor)
	if err != nil {
		return filterchain.Result{}, err
	}
	flaggers := []filterchain.ItineraryDeletionFlagger{costFilter}
	if maxIts > 0 {
		flaggers = append(flaggers, filterchain.NewMaxLimitFilter("", maxIts))
	}
	return filterchain.NewChain(flaggers...).Filter(its), nil
}

func (s *TransitService) JoinStates(ctx context.Context, transitState, streetState *pathstate.PathState) *pathstate.PathState {
	return pathstate.Join(transitState, streetState)
}

func (s *TransitService) SnapshotStats(ctx context.Context) snapshot.Stats {
	return s.store.Current().Stats()
}
