package pathstate

// Join stitches the result of a transit optimised search phase and a street optimised phase
// ending at the same point. The result starts as a copy of streetState; then every transit
// lineage field is taken from transitState so the lineage never mixes two branches.
//
// The field list is explicit on purpose. A new field on PathState needs a decision about
// which phase owns it before it is added here.
func Join(transitState, streetState *PathState) *PathState {
	joined := streetState.Edit()

	joined.TripID = transitState.TripID
	joined.EverBoarded = transitState.EverBoarded
	joined.NumBoardings = transitState.NumBoardings
	joined.PreviousTripID = transitState.PreviousTripID
	joined.LastAlightedTime = transitState.LastAlightedTime
	joined.RouteID = transitState.RouteID
	joined.RouteSequence = cloneSlice(transitState.RouteSequence)
	joined.Zone = transitState.Zone
	joined.PreviousStopID = transitState.PreviousStopID
	joined.ServiceDay = transitState.ServiceDay
	joined.LastPatternID = transitState.LastPatternID

	return joined
}
