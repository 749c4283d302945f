package datastructure

import (
	"fmt"
	"strings"
)

type TransferPriority uint8

const (
	NotAllowed TransferPriority = iota
	Allowed
	Recommended
	Preferred
)

// selection rank. Allowed dan Recommended sama bobotnya, cuma beda buat display.
var priorityRank = map[TransferPriority]int{
	NotAllowed:  -1,
	Allowed:     0,
	Recommended: 0,
	Preferred:   1,
}

var priorityNames = map[TransferPriority]string{
	NotAllowed:  "NOT_ALLOWED",
	Allowed:     "ALLOWED",
	Recommended: "RECOMMENDED",
	Preferred:   "PREFERRED",
}

func (p TransferPriority) Rank() int {
	return priorityRank[p]
}

// Compare orders priorities by desirability: negative if p is less desirable than o, zero if
// equally weighted, positive if more desirable.
func (p TransferPriority) Compare(o TransferPriority) int {
	return p.Rank() - o.Rank()
}

func (p TransferPriority) IsAllowed() bool {
	return p != NotAllowed
}

func (p TransferPriority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return fmt.Sprintf("TransferPriority(%d)", uint8(p))
}

func ParseTransferPriority(s string) (TransferPriority, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	for p, name := range priorityNames {
		if name == norm {
			return p, nil
		}
	}
	return NotAllowed, fmt.Errorf("unknown transfer priority %q", s)
}

func (p TransferPriority) MarshalText() ([]byte, error) {
	if _, ok := priorityNames[p]; !ok {
		return nil, fmt.Errorf("unknown transfer priority %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *TransferPriority) UnmarshalText(b []byte) error {
	v, err := ParseTransferPriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TransferPoint is one side of a constrained transfer. A trip point has TripID set (and the
// stop position in that trip), a route point has RouteID set, otherwise it is a stop point.
type TransferPoint struct {
	Stop         int    `json:"stop"`
	RouteID      string `json:"route_id,omitempty"`
	TripID       string `json:"trip_id,omitempty"`
	StopPosition int    `json:"stop_position,omitempty"`
}

func (tp TransferPoint) IsTripPoint() bool  { return tp.TripID != "" }
func (tp TransferPoint) IsRoutePoint() bool { return tp.TripID == "" && tp.RouteID != "" }

// SpecificityRanking https://developers.google.com/transit/gtfs/reference/gtfs-extensions#specificity-of-a-transfer
func (tp TransferPoint) SpecificityRanking() int {
	switch {
	case tp.IsTripPoint():
		return 2
	case tp.IsRoutePoint():
		return 1
	default:
		return 0
	}
}

func matchesPoint[T TripSchedule](tp TransferPoint, trip T, pos int) bool {
	if tp.Stop != trip.StopIndex(pos) {
		return false
	}
	switch {
	case tp.IsTripPoint():
		return tp.TripID == trip.TripID() && tp.StopPosition == pos
	case tp.IsRoutePoint():
		return tp.RouteID == trip.RouteID()
	}
	return true
}

func (tp TransferPoint) String() string {
	switch {
	case tp.IsTripPoint():
		return fmt.Sprintf("(stop %d, trip %s@%d)", tp.Stop, tp.TripID, tp.StopPosition)
	case tp.IsRoutePoint():
		return fmt.Sprintf("(stop %d, route %s)", tp.Stop, tp.RouteID)
	}
	return fmt.Sprintf("(stop %d)", tp.Stop)
}

// ConstrainedTransfer is an operator declared transfer rule, one row of the transfer table.
type ConstrainedTransfer struct {
	From            TransferPoint    `json:"from"`
	To              TransferPoint    `json:"to"`
	Priority        TransferPriority `json:"priority"`
	StaySeated      bool             `json:"stay_seated,omitempty"`
	Guaranteed      bool             `json:"guaranteed,omitempty"`
	MinTransferTime int              `json:"min_transfer_time"` // -1 = not set
}

func (c *ConstrainedTransfer) SpecificityRanking() int {
	return c.From.SpecificityRanking() + c.To.SpecificityRanking()
}

func (c *ConstrainedTransfer) HasMinTransferTime() bool {
	return c.MinTransferTime >= 0
}

// Matches reports whether the rule governs alighting fromTrip at fromPos and boarding toTrip
// at toPos.
func Matches[T TripSchedule](c *ConstrainedTransfer, fromTrip T, fromPos int, toTrip T, toPos int) bool {
	return matchesPoint(c.From, fromTrip, fromPos) && matchesPoint(c.To, toTrip, toPos)
}

func (c *ConstrainedTransfer) String() string {
	var sb strings.Builder
	sb.WriteString("Transfer{from: ")
	sb.WriteString(c.From.String())
	sb.WriteString(", to: ")
	sb.WriteString(c.To.String())
	sb.WriteString(", ")
	sb.WriteString(c.Priority.String())
	if c.StaySeated {
		sb.WriteString(", staySeated")
	}
	if c.Guaranteed {
		sb.WriteString(", guaranteed")
	}
	sb.WriteString("}")
	return sb.String()
}

// TransferEdge is a directed connection from an arrival on one trip to a departure on another.
type TransferEdge[T TripSchedule] struct {
	From       StopVisit[T]
	To         StopVisit[T]
	Priority   TransferPriority
	Duration   int
	Constraint *ConstrainedTransfer
}

func (e TransferEdge[T]) SameStop() bool {
	return e.From.Stop == e.To.Stop
}

// EffectiveDuration is zero for same-stop transfers whatever Duration says.
func (e TransferEdge[T]) EffectiveDuration() int {
	if e.SameStop() {
		return 0
	}
	return e.Duration
}

// IsBetterThan is the tie-break between two edges reaching the same destination stop.
func (e TransferEdge[T]) IsBetterThan(o TransferEdge[T]) bool {
	if c := e.Priority.Compare(o.Priority); c != 0 {
		return c > 0
	}
	if e.EffectiveDuration() != o.EffectiveDuration() {
		return e.EffectiveDuration() < o.EffectiveDuration()
	}
	return e.From.StopPosition < o.From.StopPosition
}

func (e TransferEdge[T]) String() string {
	return fmt.Sprintf("%s ~ %s %s %ds", e.From, e.To, e.Priority, e.EffectiveDuration())
}

// BestPerDestination keeps one representative edge for each destination stop.
func BestPerDestination[T TripSchedule](edges []TransferEdge[T]) []TransferEdge[T] {
	idx := make(map[int]int)
	res := make([]TransferEdge[T], 0, len(edges))
	for _, e := range edges {
		i, ok := idx[e.To.Stop]
		if !ok {
			idx[e.To.Stop] = len(res)
			res = append(res, e)
			continue
		}
		if e.IsBetterThan(res[i]) {
			res[i] = e
		}
	}
	return res
}
