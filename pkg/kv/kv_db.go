package kv

import (
	"errors"
	"fmt"
	"log"

	"lintang/transitx/pkg/concurrent"
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/server"
	"lintang/transitx/pkg/snapshot"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

const (
	keyMeta      = "network:meta"
	keyStops     = "network:stops"
	keyTransfers = "network:transfers"
	tripKeyFmt   = "network:trips:%06d"
)

type SaveOptions struct {
	// ChunkSize jumlah trip per key
	ChunkSize int
	Workers   int
	// Progress tampilkan progress bar di stdout
	Progress bool
}

type KVDB struct {
	db *pebble.DB
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db}
}

func Open(dir string) (*KVDB, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "open pebble db %s", dir)
	}
	return NewKVDB(db), nil
}

// SaveNetwork menyimpan snapshot network. Trip disimpan per chunk secara paralel.
func (k *KVDB) SaveNetwork(n *snapshot.Network, opts SaveOptions) error {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	chunks := (len(n.Trips) + opts.ChunkSize - 1) / opts.ChunkSize

	if err := k.set(keyStops, stopsValue{Stops: n.Stops, Footpaths: n.FootpathsByStop}); err != nil {
		return err
	}
	if err := k.set(keyTransfers, transfersValue{Transfers: n.Transfers}); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(chunks,
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan][3/3][reset] saving trips to pebble db..."),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	workers := concurrent.NewWorkerPool[concurrent.SaveTripsJobItem, error](opts.Workers, chunks)
	for c := 0; c < chunks; c++ {
		from := c * opts.ChunkSize
		to := min(from+opts.ChunkSize, len(n.Trips))
		workers.AddJob(concurrent.SaveTripsJobItem{Key: fmt.Sprintf(tripKeyFmt, c), Trips: n.Trips[from:to]})
	}
	workers.Close()
	workers.Start(func(job concurrent.SaveTripsJobItem) error {
		err := k.saveTrips(job)
		if bar != nil {
			bar.Add(1)
		}
		return err
	})
	workers.Wait()

	for err := range workers.CollectResults() {
		if err != nil {
			return err
		}
	}
	if bar != nil {
		fmt.Println("")
	}

	// meta terakhir, jadi snapshot yang setengah tersimpan tidak pernah kebaca
	meta := networkMeta{Version: n.Version, NumStops: len(n.Stops), NumTrips: len(n.Trips), TripChunks: chunks}
	if err := k.set(keyMeta, meta); err != nil {
		return err
	}
	log.Printf("saved network %s: %d stops, %d trips in %d chunks", n.Version, len(n.Stops), len(n.Trips), chunks)
	return nil
}

func (k *KVDB) saveTrips(job concurrent.SaveTripsJobItem) error {
	return k.set(job.Key, tripsValue{Trips: job.Trips})
}

// LoadNetwork membaca snapshot yang terakhir disimpan dan langsung di-Build.
func (k *KVDB) LoadNetwork() (*snapshot.Network, error) {
	var meta networkMeta
	if err := k.get(keyMeta, &meta); err != nil {
		return nil, err
	}
	var stops stopsValue
	if err := k.get(keyStops, &stops); err != nil {
		return nil, err
	}
	var trs transfersValue
	if err := k.get(keyTransfers, &trs); err != nil {
		return nil, err
	}

	trips := make([]datastructure.Trip, 0, meta.NumTrips)
	for c := 0; c < meta.TripChunks; c++ {
		var tv tripsValue
		if err := k.get(fmt.Sprintf(tripKeyFmt, c), &tv); err != nil {
			return nil, err
		}
		trips = append(trips, tv.Trips...)
	}
	if len(trips) != meta.NumTrips || len(stops.Stops) != meta.NumStops {
		return nil, server.WrapErrorf(nil, server.ErrContractViolation,
			"network %s is incomplete: %d/%d trips, %d/%d stops", meta.Version, len(trips), meta.NumTrips, len(stops.Stops), meta.NumStops)
	}

	n := &snapshot.Network{
		Version:         meta.Version,
		Stops:           stops.Stops,
		Trips:           trips,
		FootpathsByStop: stops.Footpaths,
		Transfers:       trs.Transfers,
	}
	if err := n.Build(); err != nil {
		return nil, err
	}
	return n, nil
}

// LoadNetworkFromDir membuka db di dir, membaca snapshot lalu menutup db lagi. Lock direktori
// pebble tidak ditahan, jadi preprocessing bisa menulis snapshot baru selama server jalan.
func LoadNetworkFromDir(dir string) (*snapshot.Network, error) {
	k, err := Open(dir)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return k.LoadNetwork()
}

func (k *KVDB) set(key string, v any) error {
	val, err := encode(v)
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "encode %s", key)
	}
	if err := k.db.Set([]byte(key), val, pebble.Sync); err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "write %s", key)
	}
	return nil
}

func (k *KVDB) get(key string, v any) error {
	val, closer, err := k.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return server.WrapErrorf(err, server.ErrNotFound, "key %s not found, run preprocessing first", key)
	}
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "read %s", key)
	}
	defer closer.Close()

	if err := decode(val, v); err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "decode %s", key)
	}
	return nil
}

func (k *KVDB) Close() {
	k.db.Close()
}
