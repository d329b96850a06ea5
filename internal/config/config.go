package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the glicks dashboard.
type Config struct {
	Seasons Seasons `yaml:"seasons"`
	Source  Source  `yaml:"source"`
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Cache   Cache   `yaml:"cache"`
	Display Display `yaml:"display"`
	Logging Logging `yaml:"logging"`
}

// Seasons lists the seasons a viewer can switch between. Current is the
// live season whose data lives at the un-prefixed data path.
type Seasons struct {
	Current   string   `yaml:"current"`
	Available []string `yaml:"available"`
	TimeZone  string   `yaml:"time_zone"`
}

// Source selects and configures the provider picks and results come from.
// Kind is one of "rest", "postgres", "static", "rpc" or "archive".
type Source struct {
	Kind     string         `yaml:"kind"`
	REST     RESTSource     `yaml:"rest"`
	Postgres PostgresSource `yaml:"postgres"`
	Static   StaticSource   `yaml:"static"`
	RPC      RPCSource      `yaml:"rpc"`
}

// RESTSource points at a PostgREST compatible endpoint.
type RESTSource struct {
	URL             string        `yaml:"url"`
	AnonKey         string        `yaml:"anon_key"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
	Burst           int           `yaml:"burst"`
}

// PostgresSource holds the connection string for direct database reads.
type PostgresSource struct {
	DSN      string `yaml:"dsn"`
	MinConns int    `yaml:"min_conns"`
	MaxConns int    `yaml:"max_conns"`
}

// StaticSource serves the JSON snapshot files published with the site.
type StaticSource struct {
	Dir string `yaml:"dir"`
}

// RPCSource points at a peer glicks-server gRPC listener.
type RPCSource struct {
	Addr string `yaml:"addr"`
}

// Storage holds paths for local persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	GRPCPort    int      `yaml:"grpc_port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Cache configures the optional Redis layer in front of the source.
type Cache struct {
	RedisURL   string        `yaml:"redis_url"`
	PicksTTL   time.Duration `yaml:"picks_ttl"`
	ResultsTTL time.Duration `yaml:"results_ttl"`
}

// Display holds presentation options shared by the HTTP API and the TUI.
type Display struct {
	SplitDoubleheaders bool `yaml:"split_doubleheaders"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, expands ${VAR}
// references, parses it into a Config, fills defaults and then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// AllSeasons returns the current season followed by the archived ones,
// without duplicates.
func (c *Config) AllSeasons() []string {
	out := []string{c.Seasons.Current}
	for _, s := range c.Seasons.Available {
		if s != "" && s != c.Seasons.Current {
			out = append(out, s)
		}
	}
	return out
}

// HasSeason reports whether season is one of AllSeasons.
func (c *Config) HasSeason(season string) bool {
	for _, s := range c.AllSeasons() {
		if s == season {
			return true
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Seasons.Current == "" {
		cfg.Seasons.Current = "2026"
	}
	if cfg.Seasons.Available == nil {
		cfg.Seasons.Available = []string{"2025", "2024"}
	}
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "static"
	}
	if cfg.Source.Static.Dir == "" {
		cfg.Source.Static.Dir = "."
	}
	if cfg.Source.REST.Timeout == 0 {
		cfg.Source.REST.Timeout = 15 * time.Second
	}
	if cfg.Source.REST.MaxRetries == 0 {
		cfg.Source.REST.MaxRetries = 3
	}
	if cfg.Source.REST.RateLimitPerMin == 0 {
		cfg.Source.REST.RateLimitPerMin = 120
	}
	if cfg.Source.REST.Burst == 0 {
		cfg.Source.REST.Burst = 8
	}
	if cfg.Source.Postgres.MaxConns == 0 {
		cfg.Source.Postgres.MaxConns = 4
	}
	if cfg.Source.RPC.Addr == "" {
		cfg.Source.RPC.Addr = "localhost:50061"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = 50061
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Cache.PicksTTL == 0 {
		cfg.Cache.PicksTTL = 2 * time.Minute
	}
	if cfg.Cache.ResultsTTL == 0 {
		cfg.Cache.ResultsTTL = 10 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GLICKS_SEASON"); v != "" {
		cfg.Seasons.Current = v
	}
	if v := os.Getenv("GLICKS_SEASONS"); v != "" {
		cfg.Seasons.Available = splitList(v)
	}
	if v := os.Getenv("GLICKS_TZ"); v != "" {
		cfg.Seasons.TimeZone = v
	}

	if v := os.Getenv("GLICKS_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Source.REST.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Source.REST.AnonKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Source.Postgres.DSN = v
	}
	if v := os.Getenv("GLICKS_STATIC_DIR"); v != "" {
		cfg.Source.Static.Dir = v
	}
	if v := os.Getenv("GLICKS_RPC_ADDR"); v != "" {
		cfg.Source.RPC.Addr = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}

	if v := os.Getenv("GLICKS_SPLIT_DOUBLEHEADERS"); v != "" {
		cfg.Display.SplitDoubleheaders, _ = strconv.ParseBool(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
