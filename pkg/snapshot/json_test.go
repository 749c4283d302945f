package snapshot

import (
	"strings"
	"testing"

	"lintang/transitx/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	in := `{
		"version": "2024-05-01",
		"stops": [{"index": 0, "id": "a"}, {"index": 1, "id": "b"}],
		"trips": [{"id": "T1", "route": "R1", "pattern": "P1", "stops": [0, 1], "arrivals": [0, 60], "departures": [0, 60]}],
		"footpaths": [[{"to_stop": 1, "duration": 30}]],
		"transfers": [{"from": {"stop": 1, "route_id": "R1"}, "to": {"stop": 0}, "priority": "not-allowed", "min_transfer_time": -1}]
	}`
	n, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.NoError(t, n.Build())

	assert.Equal(t, "2024-05-01", n.Version)
	assert.Equal(t, datastructure.NotAllowed, n.Transfers[0].Priority)
	assert.Equal(t, 1, n.Transfers[0].From.SpecificityRanking())
	assert.Len(t, n.Footpaths(0), 1)

	_, err = ReadJSON(strings.NewReader(`{"transfers": [{"priority": "SOMETIMES"}]}`))
	assert.Error(t, err)
}
