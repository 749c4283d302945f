package snapshot

import (
	"sync"
	"testing"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetwork(version string) *Network {
	return &Network{
		Version: version,
		Stops: []datastructure.Stop{
			{Index: 0, ID: "S0"}, {Index: 1, ID: "S1"}, {Index: 2, ID: "S2"},
		},
		Trips: []datastructure.Trip{
			*datastructure.NewTrip("A", "R1", []int{0, 1}, []int{0, 300}, []int{0, 300}),
			*datastructure.NewTrip("B", "R2", []int{2, 0}, []int{400, 800}, []int{400, 800}),
		},
		FootpathsByStop: [][]datastructure.Footpath{nil, {{ToStop: 2, Duration: 60}}},
		Transfers: []datastructure.ConstrainedTransfer{{
			From:            datastructure.TransferPoint{Stop: 1},
			To:              datastructure.TransferPoint{Stop: 2},
			Priority:        datastructure.Preferred,
			MinTransferTime: -1,
		}},
	}
}

func TestBuild(t *testing.T) {
	n := testNetwork("v1")
	require.NoError(t, n.Build())

	trip, ok := n.Trip("B")
	require.True(t, ok)
	assert.Equal(t, "R2", trip.RouteID())
	_, ok = n.Trip("X")
	assert.False(t, ok)

	stop, ok := n.StopByID("S2")
	require.True(t, ok)
	assert.Equal(t, 2, stop.Index)

	assert.Len(t, n.Footpaths(1), 1)
	assert.Nil(t, n.Footpaths(2))
	assert.Equal(t, 1, n.TransferTable().Len())
	assert.Equal(t, Stats{Version: "v1", Stops: 3, Trips: 2, Footpaths: 1, Transfers: 1}, n.Stats())
}

func TestBuildRejectsInconsistentNetwork(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n *Network)
		code   error
	}{
		{"stop index", func(n *Network) { n.Stops[1].Index = 5 }, server.ErrContractViolation},
		{"duplicate stop", func(n *Network) { n.Stops[1].ID = "S0" }, server.ErrConflict},
		{"unknown stop in trip", func(n *Network) { n.Trips[0].Stops[1] = 9 }, server.ErrContractViolation},
		{"backwards trip", func(n *Network) { n.Trips[0].Arrivals[1] = -1 }, server.ErrContractViolation},
		{"duplicate trip", func(n *Network) { n.Trips[1].ID = "A" }, server.ErrConflict},
		{"footpath target", func(n *Network) { n.FootpathsByStop[1][0].ToStop = 3 }, server.ErrContractViolation},
		{"transfer stop", func(n *Network) { n.Transfers[0].To.Stop = -1 }, server.ErrContractViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := testNetwork("v1")
			tt.mutate(n)
			assert.ErrorIs(t, n.Build(), tt.code)
		})
	}
}

func TestStore(t *testing.T) {
	_, err := NewStore(testNetwork("v1"))
	assert.ErrorIs(t, err, server.ErrBadParamInput)

	v1 := testNetwork("v1")
	require.NoError(t, v1.Build())
	store, err := NewStore(v1)
	require.NoError(t, err)

	bound := store.Current()

	v2 := testNetwork("v2")
	require.NoError(t, v2.Build())
	prev, err := store.Swap(v2)
	require.NoError(t, err)

	assert.Same(t, v1, prev)
	assert.Equal(t, "v1", bound.Version)
	assert.Equal(t, "v2", store.Current().Version)
}

func TestStoreConcurrentReaders(t *testing.T) {
	v1 := testNetwork("v1")
	require.NoError(t, v1.Build())
	store, err := NewStore(v1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n := store.Current()
				assert.True(t, n.Built())
			}
		}()
	}
	for i := 0; i < 10; i++ {
		n := testNetwork("v")
		require.NoError(t, n.Build())
		_, err := store.Swap(n)
		require.NoError(t, err)
	}
	wg.Wait()
}
