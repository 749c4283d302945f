package footpath

import (
	"math"
	"runtime"
	"slices"

	"lintang/transitx/pkg/concurrent"
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"

	"github.com/golang/geo/s2"
	"github.com/uber/h3-go/v4"
)

const (
	h3Resolution      = 9
	earthRadiusMeters = 6371010.0
	stopsPerJob       = 256
)

// Generate builds the standard transfers between stops at most maxDistance meters apart,
// walking at walkSpeed m/s. Result is indexed by Stop.Index, which must equal the position of
// the stop in stops. Footpaths of each stop are ordered by destination stop.
func Generate(stops []datastructure.Stop, maxDistance, walkSpeed float64) ([][]datastructure.Footpath, error) {
	if walkSpeed <= 0 {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "walk speed must be > 0, got %v", walkSpeed)
	}
	if maxDistance < 0 {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "max footpath distance must be >= 0, got %v", maxDistance)
	}
	for i, s := range stops {
		if s.Index != i {
			return nil, server.WrapErrorf(nil, server.ErrContractViolation, "stop %s has index %d at position %d", s.ID, s.Index, i)
		}
	}

	cells := make([]h3.Cell, len(stops))
	buckets := make(map[h3.Cell][]int)
	for i, s := range stops {
		cell := h3.LatLngToCell(h3.NewLatLng(s.Lat, s.Lon), h3Resolution)
		cells[i] = cell
		buckets[cell] = append(buckets[cell], i)
	}
	radius := diskRadius(maxDistance)

	footpaths := make([][]datastructure.Footpath, len(stops))
	numJobs := (len(stops) + stopsPerJob - 1) / stopsPerJob
	workers := concurrent.NewWorkerPool[concurrent.StopRangeJobItem, struct{}](runtime.NumCPU(), numJobs)
	for from := 0; from < len(stops); from += stopsPerJob {
		workers.AddJob(concurrent.StopRangeJobItem{From: from, To: min(from+stopsPerJob, len(stops))})
	}
	workers.Close()

	// tiap job cuma nulis ke footpaths[From:To] miliknya sendiri
	workers.Start(func(job concurrent.StopRangeJobItem) struct{} {
		for i := job.From; i < job.To; i++ {
			footpaths[i] = nearbyStops(stops, i, cells[i], buckets, radius, maxDistance, walkSpeed)
		}
		return struct{}{}
	})
	workers.Wait()

	return footpaths, nil
}

func nearbyStops(stops []datastructure.Stop, i int, cell h3.Cell, buckets map[h3.Cell][]int,
	radius int, maxDistance, walkSpeed float64) []datastructure.Footpath {
	from := s2.LatLngFromDegrees(stops[i].Lat, stops[i].Lon)
	res := make([]datastructure.Footpath, 0)
	for _, c := range h3.GridDisk(cell, radius) {
		for _, j := range buckets[c] {
			if j == i {
				continue
			}
			to := s2.LatLngFromDegrees(stops[j].Lat, stops[j].Lon)
			dist := from.Distance(to).Radians() * earthRadiusMeters
			if dist > maxDistance {
				continue
			}
			res = append(res, datastructure.Footpath{
				ToStop:   j,
				Duration: int(math.Ceil(dist / walkSpeed)),
			})
		}
	}
	slices.SortFunc(res, func(a, b datastructure.Footpath) int {
		return a.ToStop - b.ToStop
	})
	return res
}

// diskRadius jumlah ring h3 yang menutup lingkaran radius maxDistance meter.
// https://observablehq.com/@nrabinowitz/h3-radius-lookup?collection=@nrabinowitz/h3
// Satu ring tambahan untuk stop yang ada di pinggir cell.
func diskRadius(maxDistance float64) int {
	originArea := h3.CellAreaKm2(h3.LatLngToCell(h3.NewLatLng(0, 0), h3Resolution))
	km := maxDistance / 1000
	searchArea := math.Pi * km * km

	radius := 0
	diskArea := originArea
	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}
	return radius + 1
}

// Table is an in-memory set of standard transfers indexed by stop.
type Table [][]datastructure.Footpath

func (t Table) Footpaths(stop int) []datastructure.Footpath {
	if stop < 0 || stop >= len(t) {
		return nil
	}
	return t[stop]
}
