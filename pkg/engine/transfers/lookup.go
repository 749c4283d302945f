package transfers

import (
	"slices"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"

	lru "github.com/hashicorp/golang-lru/v2"
)

// StandardTransfers gives the walking transfers leaving a stop.
type StandardTransfers interface {
	Footpaths(stop int) []datastructure.Footpath
}

type Options struct {
	// TransitSlack ditambahkan ke arrival sebelum boleh naik trip lain (detik)
	TransitSlack int
	// CacheSize jumlah pasangan (sourceTrip, targetTrip) yang di-cache. 0 = tanpa cache
	CacheSize int
}

type cacheKey struct {
	from, to string
}

type positionPair struct {
	from, to int
}

// LookupService finds the transfers connecting two trips. It is a pure function of the
// transfer table, the footpaths and the two trips.
type LookupService[T datastructure.TripSchedule] struct {
	table *TransferTable
	std   StandardTransfers
	slack int
	cache *lru.Cache[cacheKey, []datastructure.TransferEdge[T]]
}

func NewLookupService[T datastructure.TripSchedule](table *TransferTable, std StandardTransfers, opts Options) (*LookupService[T], error) {
	if opts.TransitSlack < 0 {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "transit slack must not be negative: %d", opts.TransitSlack)
	}
	s := &LookupService[T]{
		table: table,
		std:   std,
		slack: opts.TransitSlack,
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[cacheKey, []datastructure.TransferEdge[T]](opts.CacheSize)
		if err != nil {
			return nil, server.WrapErrorf(err, server.ErrBadParamInput, "invalid transfer cache size %d", opts.CacheSize)
		}
		s.cache = c
	}
	return s, nil
}

// FindTransfers returns every feasible transfer from sourceTrip, alighting at or after the
// position of sourceDeparture, to targetTrip. NOT_ALLOWED connections are never returned.
// When several edges reach the same destination stop the caller picks one with
// datastructure.BestPerDestination.
func (s *LookupService[T]) FindTransfers(sourceTrip T, sourceDeparture datastructure.StopVisit[T], targetTrip T) ([]datastructure.TransferEdge[T], error) {
	if sourceDeparture.Trip.TripID() != sourceTrip.TripID() {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation,
			"stop visit %s does not belong to trip %s", sourceDeparture, sourceTrip.TripID())
	}
	pos := sourceDeparture.StopPosition
	if !datastructure.InRange(sourceTrip, pos) {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation,
			"stop position %d out of range for trip %s", pos, sourceTrip.TripID())
	}
	if sourceTrip.StopIndex(pos) != sourceDeparture.Stop {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation,
			"stop visit %s does not match stop %d of trip %s", sourceDeparture, sourceTrip.StopIndex(pos), sourceTrip.TripID())
	}

	if s.cache == nil {
		return s.findAllTransfers(sourceTrip, targetTrip, pos), nil
	}

	key := cacheKey{sourceTrip.TripID(), targetTrip.TripID()}
	all, ok := s.cache.Get(key)
	if !ok {
		all = s.findAllTransfers(sourceTrip, targetTrip, 0)
		s.cache.Add(key, all)
	}

	res := make([]datastructure.TransferEdge[T], 0, len(all))
	for _, e := range all {
		if e.From.StopPosition >= pos {
			res = append(res, e)
		}
	}
	return res, nil
}

func (s *LookupService[T]) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

func (s *LookupService[T]) findAllTransfers(fromTrip, toTrip T, startPos int) []datastructure.TransferEdge[T] {
	result := make([]datastructure.TransferEdge[T], 0)
	produced := make(map[positionPair]bool)

	for p := startPos; p < fromTrip.NumberOfStops(); p++ {
		from := datastructure.ArrivalAt(fromTrip, p)

		// transfer di stop yang sama dulu, baru footpath
		s.addTransfer(&result, produced, from, toTrip, from.Stop, 0)
		if s.std == nil {
			continue
		}
		for _, fp := range s.std.Footpaths(from.Stop) {
			if fp.ToStop == from.Stop {
				continue
			}
			s.addTransfer(&result, produced, from, toTrip, fp.ToStop, fp.Duration)
		}
	}

	s.addConstrainedOnly(&result, produced, fromTrip, toTrip, startPos)

	slices.SortStableFunc(result, func(a, b datastructure.TransferEdge[T]) int {
		if a.From.StopPosition != b.From.StopPosition {
			return a.From.StopPosition - b.From.StopPosition
		}
		return a.To.StopPosition - b.To.StopPosition
	})
	return result
}

func (s *LookupService[T]) addTransfer(result *[]datastructure.TransferEdge[T], produced map[positionPair]bool,
	from datastructure.StopVisit[T], toTrip T, toStop int, walk int) {
	if toStop == from.Stop {
		walk = 0
	}
	// slack belum dihitung di sini: guaranteed / stay seated tidak kena slack
	earliest := from.Time + walk
	pos := FindDepartureStopPosition(toTrip, earliest, toStop)

	for ; pos >= 0; pos = findDepartureStopPositionFrom(toTrip, pos+1, earliest, toStop) {
		rule := FindRule(s.table, from.Trip, from.StopPosition, toTrip, pos)
		need := earliest
		if rule == nil || !(rule.Guaranteed || rule.StaySeated) {
			need += s.slack
		}
		duration := walk
		if rule != nil && rule.HasMinTransferTime() {
			need = max(need, from.Time+rule.MinTransferTime)
			duration = max(duration, rule.MinTransferTime)
		}
		if toTrip.Departure(pos) < need {
			continue
		}

		key := positionPair{from.StopPosition, pos}
		if produced[key] {
			return
		}
		produced[key] = true

		priority := datastructure.Allowed
		if rule != nil {
			priority = rule.Priority
		}
		// pattern yang loop bisa lewat stop yang sama lagi dengan rule lain
		if !priority.IsAllowed() {
			continue
		}
		*result = append(*result, datastructure.TransferEdge[T]{
			From:       from,
			To:         datastructure.DepartureAt(toTrip, pos),
			Priority:   priority,
			Duration:   duration,
			Constraint: rule,
		})
		return
	}
}

// addConstrainedOnly adds trip-to-trip rules connecting stops the footpaths do not reach, or
// guaranteed connections the slack would otherwise rule out.
func (s *LookupService[T]) addConstrainedOnly(result *[]datastructure.TransferEdge[T], produced map[positionPair]bool,
	fromTrip, toTrip T, startPos int) {
	for _, r := range s.table.tripToTrip(fromTrip.TripID(), toTrip.TripID()) {
		p, q := r.From.StopPosition, r.To.StopPosition
		if p < startPos || !datastructure.InRange(fromTrip, p) || !datastructure.InRange(toTrip, q) {
			continue
		}
		if fromTrip.StopIndex(p) != r.From.Stop || toTrip.StopIndex(q) != r.To.Stop {
			continue
		}
		key := positionPair{p, q}
		if produced[key] {
			continue
		}

		rule := FindRule(s.table, fromTrip, p, toTrip, q)
		if rule == nil || !rule.Priority.IsAllowed() {
			continue
		}

		arrival := fromTrip.Arrival(p)
		need := arrival
		if !rule.Guaranteed && !rule.StaySeated {
			need += s.slack
		}
		duration := footpathDuration(s.std, r.From.Stop, r.To.Stop)
		if rule.HasMinTransferTime() {
			need = max(need, arrival+rule.MinTransferTime)
			duration = max(duration, rule.MinTransferTime)
		}
		if toTrip.Departure(q) < need {
			continue
		}

		produced[key] = true
		*result = append(*result, datastructure.TransferEdge[T]{
			From:       datastructure.ArrivalAt(fromTrip, p),
			To:         datastructure.DepartureAt(toTrip, q),
			Priority:   rule.Priority,
			Duration:   duration,
			Constraint: rule,
		})
	}
}

func footpathDuration(std StandardTransfers, from, to int) int {
	if from == to || std == nil {
		return 0
	}
	for _, fp := range std.Footpaths(from) {
		if fp.ToStop == to {
			return fp.Duration
		}
	}
	return 0
}
