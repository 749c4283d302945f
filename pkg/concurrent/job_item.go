package concurrent

import "lintang/transitx/pkg/datastructure"

// SaveTripsJobItem satu chunk trip yang disimpan ke kv db dengan satu key.
type SaveTripsJobItem struct {
	Key   string
	Trips []datastructure.Trip
}

// StopRangeJobItem range index stop [From, To) yang diproses satu worker.
type StopRangeJobItem struct {
	From int
	To   int
}

type JobI interface {
	int | SaveTripsJobItem | StopRangeJobItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G
