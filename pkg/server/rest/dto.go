package rest

import (
	"time"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/pathstate"
	"lintang/transitx/pkg/util"

	"github.com/golang/geo/s2"
)

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat" validate:"lte=90,gte=-90"`
	Lon float64 `json:"lon" validate:"lte=180,gte=-180"`
}

// PathStateDTO model info
//
//	@Description	path state di wire. geometry berupa list koordinat. encoded_geometry & walk_distance_display (2 desimal) hanya di response
type PathStateDTO struct {
	TripID           string    `json:"trip_id,omitempty"`
	EverBoarded      bool      `json:"ever_boarded"`
	NumBoardings     int       `json:"num_boardings" validate:"gte=0"`
	PreviousTripID   string    `json:"previous_trip_id,omitempty"`
	LastAlightedTime int64     `json:"last_alighted_time,omitempty"`
	RouteID          string    `json:"route_id,omitempty"`
	RouteSequence    []string  `json:"route_sequence,omitempty"`
	Zone             string    `json:"zone,omitempty"`
	PreviousStopID   string    `json:"previous_stop_id,omitempty"`
	ServiceDay       time.Time `json:"service_day"`
	LastPatternID    string    `json:"last_pattern_id,omitempty"`

	Mode                datastructure.TraverseMode `json:"mode" validate:"required"`
	Geometry            []Coord                    `json:"geometry,omitempty" validate:"dive"`
	EncodedGeometry     string                     `json:"encoded_geometry,omitempty"`
	WalkDistance        float64                    `json:"walk_distance" validate:"gte=0"`
	WalkDistanceDisplay float64                    `json:"walk_distance_display,omitempty"`
	WalkTime            int                        `json:"walk_time" validate:"gte=0"`
	NonTransitElapsed   int                        `json:"non_transit_elapsed" validate:"gte=0"`
}

func (d *PathStateDTO) toPathState() *pathstate.PathState {
	s := pathstate.New(d.Mode)
	s.TripID = d.TripID
	s.EverBoarded = d.EverBoarded
	s.NumBoardings = d.NumBoardings
	s.PreviousTripID = d.PreviousTripID
	s.LastAlightedTime = d.LastAlightedTime
	s.RouteID = d.RouteID
	s.RouteSequence = d.RouteSequence
	s.Zone = d.Zone
	s.PreviousStopID = d.PreviousStopID
	s.ServiceDay = d.ServiceDay
	s.LastPatternID = d.LastPatternID
	for _, c := range d.Geometry {
		s.Geometry = append(s.Geometry, s2.LatLngFromDegrees(c.Lat, c.Lon))
	}
	s.WalkDistance = d.WalkDistance
	s.WalkTime = d.WalkTime
	s.NonTransitElapsed = d.NonTransitElapsed
	return s
}

func newPathStateDTO(s *pathstate.PathState) *PathStateDTO {
	d := &PathStateDTO{
		TripID:            s.TripID,
		EverBoarded:       s.EverBoarded,
		NumBoardings:      s.NumBoardings,
		PreviousTripID:    s.PreviousTripID,
		LastAlightedTime:  s.LastAlightedTime,
		RouteID:           s.RouteID,
		RouteSequence:     s.RouteSequence,
		Zone:              s.Zone,
		PreviousStopID:    s.PreviousStopID,
		ServiceDay:        s.ServiceDay,
		LastPatternID:     s.LastPatternID,
		Mode:              s.Mode,
		WalkDistance:      s.WalkDistance,
		WalkTime:          s.WalkTime,
		NonTransitElapsed: s.NonTransitElapsed,
	}
	for _, p := range s.Geometry {
		d.Geometry = append(d.Geometry, Coord{Lat: p.Lat.Degrees(), Lon: p.Lng.Degrees()})
	}
	d.WalkDistanceDisplay = util.RoundFloat(s.WalkDistance, 2)
	if len(s.Geometry) > 0 {
		d.EncodedGeometry = s.EncodedGeometry()
	}
	return d
}
