package config

import "lintang/transitx/pkg/engine/filterchain"

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// CORS allowed origins, kosong = semua
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type EngineConfig struct {
	// TransitSlack detik minimal antara turun dan naik trip lain
	TransitSlack    int `yaml:"transit_slack" validate:"gte=0"`
	LookupCacheSize int `yaml:"lookup_cache_size" validate:"gte=0"`
	ResolveWorkers  int `yaml:"resolve_workers" validate:"gte=1"`
}

type FilterConfig struct {
	CostLimitFunction filterchain.LinearFunction `yaml:"cost_limit_function"`
	WaitFactor        float64                    `yaml:"wait_factor" validate:"gte=0"`
	MaxItineraries    int                        `yaml:"max_itineraries" validate:"gte=0"`
}

type FootpathConfig struct {
	MaxDistance float64 `yaml:"max_distance" validate:"gte=0"`
	WalkSpeed   float64 `yaml:"walk_speed" validate:"gt=0"`
}

type StorageConfig struct {
	PebbleDir string `yaml:"pebble_dir" validate:"required"`
	ChunkSize int    `yaml:"chunk_size" validate:"gte=1"`
}

type GTFSConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Filter   FilterConfig   `yaml:"filter"`
	Footpath FootpathConfig `yaml:"footpath"`
	Storage  StorageConfig  `yaml:"storage"`
	GTFS     GTFSConfig     `yaml:"gtfs"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":5000"},
		Engine: EngineConfig{
			TransitSlack:    60,
			LookupCacheSize: 10000,
			ResolveWorkers:  4,
		},
		Filter: FilterConfig{
			CostLimitFunction: filterchain.LinearFunction{Constant: 900, Coefficient: 1.5},
			WaitFactor:        0.5,
			MaxItineraries:    20,
		},
		Footpath: FootpathConfig{MaxDistance: 500, WalkSpeed: 1.33},
		Storage:  StorageConfig{PebbleDir: "./transitx_db", ChunkSize: 1000},
	}
}
