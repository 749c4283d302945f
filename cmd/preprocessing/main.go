package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"lintang/transitx/pkg/config"
	"lintang/transitx/pkg/engine/footpath"
	"lintang/transitx/pkg/gtfsdb"
	"lintang/transitx/pkg/kv"
	"lintang/transitx/pkg/snapshot"
)

var (
	configFile  = flag.String("config", "", "yaml config file, kosong = default + env")
	networkFile = flag.String("f", "network.json", "network json file")
	fromDB      = flag.Bool("gtfsdb", false, "load network dari database gtfs postgres (gtfs.database_url) bukan dari file")
	version     = flag.String("version", "", "versi snapshot, default tanggal hari ini")
	regenerate  = flag.Bool("footpaths", false, "generate ulang footpath walaupun network sudah punya")
)

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *version == "" {
		*version = time.Now().Format("2006-01-02")
	}

	fmt.Println("[1/3] loading transit network...")
	var n *snapshot.Network
	if *fromDB {
		n, err = loadFromDB(cfg.GTFS.DatabaseURL, *version)
	} else {
		n, err = snapshot.LoadJSONFile(*networkFile)
		if err == nil && n.Version == "" {
			n.Version = *version
		}
	}
	if err != nil {
		log.Fatal(err)
	}

	if *regenerate || len(n.FootpathsByStop) == 0 {
		fmt.Println("[2/3] generating footpaths between nearby stops...")
		fps, err := footpath.Generate(n.Stops, cfg.Footpath.MaxDistance, cfg.Footpath.WalkSpeed)
		if err != nil {
			log.Fatal(err)
		}
		n.FootpathsByStop = fps
	} else {
		fmt.Println("[2/3] using footpaths from the network file")
	}
	if err := n.Build(); err != nil {
		log.Fatal(err)
	}
	stats := n.Stats()
	log.Printf("network %s: %d stops, %d trips, %d footpaths, %d transfers", stats.Version, stats.Stops, stats.Trips, stats.Footpaths, stats.Transfers)

	kvDB, err := kv.Open(cfg.Storage.PebbleDir)
	if err != nil {
		log.Fatal(err)
	}
	defer kvDB.Close()

	err = kvDB.SaveNetwork(n, kv.SaveOptions{
		ChunkSize: cfg.Storage.ChunkSize,
		Workers:   runtime.NumCPU(),
		Progress:  true,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\npreprocessing done, snapshot saved to %s\n", cfg.Storage.PebbleDir)
}

func loadFromDB(dsn, version string) (*snapshot.Network, error) {
	if dsn == "" {
		return nil, fmt.Errorf("gtfs.database_url / DATABASE_URL must be set")
	}
	db, err := gtfsdb.Open(dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := gtfsdb.Ping(ctx, db); err != nil {
		return nil, err
	}
	return gtfsdb.NewLoader(db).Load(ctx, version)
}
