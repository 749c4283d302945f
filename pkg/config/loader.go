package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lintang/transitx/pkg/engine/filterchain"
	"lintang/transitx/pkg/server"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TRANSITX_"

// Load reads the yaml file at path (optional, "" = defaults only), then applies .env and
// TRANSITX_* environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	// .env boleh tidak ada
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, server.WrapErrorf(err, server.ErrBadParamInput, "parse config %s", path)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid config")
	}
	if err := c.Filter.CostLimitFunction.Validate(); err != nil {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if err := envInt("TRANSIT_SLACK", &cfg.Engine.TransitSlack); err != nil {
		return err
	}
	if err := envInt("LOOKUP_CACHE_SIZE", &cfg.Engine.LookupCacheSize); err != nil {
		return err
	}
	if err := envInt("RESOLVE_WORKERS", &cfg.Engine.ResolveWorkers); err != nil {
		return err
	}
	if v := getenv("COST_LIMIT_FUNCTION"); v != "" {
		f, err := filterchain.ParseLinearFunction(v)
		if err != nil {
			return err
		}
		cfg.Filter.CostLimitFunction = f
	}
	if err := envFloat("WAIT_FACTOR", &cfg.Filter.WaitFactor); err != nil {
		return err
	}
	if err := envInt("MAX_ITINERARIES", &cfg.Filter.MaxItineraries); err != nil {
		return err
	}
	if err := envFloat("MAX_FOOTPATH_DISTANCE", &cfg.Footpath.MaxDistance); err != nil {
		return err
	}
	if err := envFloat("WALK_SPEED", &cfg.Footpath.WalkSpeed); err != nil {
		return err
	}
	if v := getenv("PEBBLE_DIR"); v != "" {
		cfg.Storage.PebbleDir = v
	}
	if err := envInt("CHUNK_SIZE", &cfg.Storage.ChunkSize); err != nil {
		return err
	}
	// DATABASE_URL juga dipakai tanpa prefix, sama seperti tool gtfs lain
	if v := firstNonEmpty(getenv("DATABASE_URL"), os.Getenv("DATABASE_URL")); v != "" {
		cfg.GTFS.DatabaseURL = v
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func envInt(key string, dst *int) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid %s%s: %q", envPrefix, key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid %s%s: %q", envPrefix, key, v)
	}
	*dst = f
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
