package kv

import (
	"lintang/transitx/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// networkMeta disimpan di key meta, sisanya per bagian.
type networkMeta struct {
	Version    string
	NumStops   int
	NumTrips   int
	TripChunks int
}

type stopsValue struct {
	Stops     []datastructure.Stop
	Footpaths [][]datastructure.Footpath
}

type transfersValue struct {
	Transfers []datastructure.ConstrainedTransfer
}

type tripsValue struct {
	Trips []datastructure.Trip
}

func encode(v any) ([]byte, error) {
	bb, err := binary.Marshal(v)
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func decode(bbCompressed []byte, v any) error {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return err
	}
	return binary.Unmarshal(bb, v)
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
