package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/snapshot"
)

type stopRow struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
	Zone string
}

type stopTimeRow struct {
	TripID    string
	RouteID   string
	StopID    string
	Arrival   string
	Departure string
}

type transferRow struct {
	FromStop, ToStop   string
	FromRoute, ToRoute string
	FromTrip, ToTrip   string
	Type               int
	MinTransferTime    int
}

// Loader reads a GTFS feed imported into postgres (tables stops, trips, stop_times, transfers).
type Loader struct {
	db *sql.DB
}

func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

func (l *Loader) Load(ctx context.Context, version string) (*snapshot.Network, error) {
	stops, err := l.fetchStops(ctx)
	if err != nil {
		return nil, err
	}
	stopTimes, err := l.fetchStopTimes(ctx)
	if err != nil {
		return nil, err
	}
	trs, err := l.fetchTransfers(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("gtfs db: %d stops, %d stop times, %d transfers", len(stops), len(stopTimes), len(trs))
	return buildNetwork(version, stops, stopTimes, trs)
}

func (l *Loader) fetchStops(ctx context.Context) ([]stopRow, error) {
	q := `SELECT stop_id, COALESCE(stop_name, ''), stop_lat, stop_lon, COALESCE(zone_id, '')
FROM stops ORDER BY stop_id`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	var res []stopRow
	for rows.Next() {
		var s stopRow
		if err := rows.Scan(&s.ID, &s.Name, &s.Lat, &s.Lon, &s.Zone); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (l *Loader) fetchStopTimes(ctx context.Context) ([]stopTimeRow, error) {
	// arrival_time/departure_time bisa > 24:00:00, jadi dibaca sebagai text
	q := `
SELECT t.trip_id, t.route_id, st.stop_id,
       COALESCE(st.arrival_time::text, st.departure_time::text),
       COALESCE(st.departure_time::text, st.arrival_time::text)
FROM trips t JOIN stop_times st ON st.trip_id = t.trip_id
ORDER BY t.trip_id, st.stop_sequence`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query stop_times: %w", err)
	}
	defer rows.Close()

	var res []stopTimeRow
	for rows.Next() {
		var st stopTimeRow
		if err := rows.Scan(&st.TripID, &st.RouteID, &st.StopID, &st.Arrival, &st.Departure); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

func (l *Loader) fetchTransfers(ctx context.Context) ([]transferRow, error) {
	q := `
SELECT from_stop_id, to_stop_id,
       COALESCE(from_route_id, ''), COALESCE(to_route_id, ''),
       COALESCE(from_trip_id, ''), COALESCE(to_trip_id, ''),
       COALESCE(transfer_type::int, 0), COALESCE(min_transfer_time::int, -1)
FROM transfers`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	var res []transferRow
	for rows.Next() {
		var tr transferRow
		if err := rows.Scan(&tr.FromStop, &tr.ToStop, &tr.FromRoute, &tr.ToRoute, &tr.FromTrip, &tr.ToTrip,
			&tr.Type, &tr.MinTransferTime); err != nil {
			return nil, err
		}
		res = append(res, tr)
	}
	return res, rows.Err()
}

// buildNetwork. stopTimes harus urut per trip lalu stop_sequence.
func buildNetwork(version string, stops []stopRow, stopTimes []stopTimeRow, trs []transferRow) (*snapshot.Network, error) {
	n := &snapshot.Network{Version: version}
	stopIdx := make(map[string]int, len(stops))
	for i, s := range stops {
		n.Stops = append(n.Stops, datastructure.Stop{Index: i, ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon, Zone: s.Zone})
		stopIdx[s.ID] = i
	}

	tripIdx := make(map[string]int)
	for _, st := range stopTimes {
		stop, ok := stopIdx[st.StopID]
		if !ok {
			return nil, fmt.Errorf("trip %s: unknown stop %s", st.TripID, st.StopID)
		}
		arr, err := ParseGTFSTime(st.Arrival)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", st.TripID, err)
		}
		dep, err := ParseGTFSTime(st.Departure)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", st.TripID, err)
		}

		i, ok := tripIdx[st.TripID]
		if !ok {
			i = len(n.Trips)
			tripIdx[st.TripID] = i
			n.Trips = append(n.Trips, *datastructure.NewTrip(st.TripID, st.RouteID, nil, nil, nil))
		}
		trip := &n.Trips[i]
		trip.Stops = append(trip.Stops, stop)
		trip.Arrivals = append(trip.Arrivals, arr)
		trip.Departures = append(trip.Departures, dep)
	}

	for _, tr := range trs {
		rule, ok := toConstrainedTransfer(tr, stopIdx, tripIdx, n.Trips)
		if !ok {
			log.Printf("skipping transfer %s -> %s: trip or stop not found", tr.FromStop, tr.ToStop)
			continue
		}
		n.Transfers = append(n.Transfers, rule)
	}

	if err := n.Build(); err != nil {
		return nil, err
	}
	return n, nil
}

func toConstrainedTransfer(tr transferRow, stopIdx map[string]int, tripIdx map[string]int, trips []datastructure.Trip) (datastructure.ConstrainedTransfer, bool) {
	fromStop, ok1 := stopIdx[tr.FromStop]
	toStop, ok2 := stopIdx[tr.ToStop]
	if !ok1 || !ok2 {
		return datastructure.ConstrainedTransfer{}, false
	}
	from, ok1 := transferPoint(fromStop, tr.FromRoute, tr.FromTrip, tripIdx, trips)
	to, ok2 := transferPoint(toStop, tr.ToRoute, tr.ToTrip, tripIdx, trips)
	if !ok1 || !ok2 {
		return datastructure.ConstrainedTransfer{}, false
	}

	t := MapTransferType(tr.Type, tr.MinTransferTime)
	t.From = from
	t.To = to
	return t, true
}

func transferPoint(stop int, routeID, tripID string, tripIdx map[string]int, trips []datastructure.Trip) (datastructure.TransferPoint, bool) {
	if tripID == "" {
		return datastructure.TransferPoint{Stop: stop, RouteID: routeID}, true
	}
	i, ok := tripIdx[tripID]
	if !ok {
		return datastructure.TransferPoint{}, false
	}
	for pos, s := range trips[i].Stops {
		if s == stop {
			return datastructure.TransferPoint{Stop: stop, TripID: tripID, StopPosition: pos}, true
		}
	}
	return datastructure.TransferPoint{}, false
}
