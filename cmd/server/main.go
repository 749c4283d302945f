package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lintang/transitx/pkg/config"
	"lintang/transitx/pkg/kv"
	"lintang/transitx/pkg/server/rest"
	"lintang/transitx/pkg/server/rest/service"
	"lintang/transitx/pkg/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default + env")
)

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	// pebble hanya dibuka selama load, preprocessing bisa menulis ke dir yang sama selama server jalan
	network, err := kv.LoadNetworkFromDir(cfg.Storage.PebbleDir)
	if err != nil {
		log.Fatal(err)
	}
	store, err := snapshot.NewStore(network)
	if err != nil {
		log.Fatal(err)
	}

	// SIGHUP: baca ulang snapshot dari pebble (setelah preprocessing jalan lagi)
	go reloadOnSignal(cfg.Storage.PebbleDir, store)

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	transitSvc := service.NewTransitService(store, cfg.Engine, cfg.Filter)
	rest.TransitRouter(r, transitSvc, m)

	stats := network.Stats()
	fmt.Printf("network %s loaded: %d stops, %d trips, %d transfers\n", stats.Version, stats.Stops, stats.Trips, stats.Transfers)
	fmt.Printf("server started at %s\n", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, r))
}

func reloadOnSignal(dir string, store *snapshot.Store) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	for range sig {
		n, err := kv.LoadNetworkFromDir(dir)
		if err != nil {
			log.Printf("reload snapshot: %v", err)
			continue
		}
		prev, err := store.Swap(n)
		if err != nil {
			log.Printf("reload snapshot: %v", err)
			continue
		}
		log.Printf("snapshot swapped %s -> %s", prev.Version, n.Version)
	}
}
