package config

import (
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig          `yaml:"log" mapstructure:"log"`
	OSM        OSMConfig          `yaml:"osm" mapstructure:"osm"`
	Cache      CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Centrality CentralityConfig   `yaml:"centrality" mapstructure:"centrality"`
	Export     ExportConfig       `yaml:"export" mapstructure:"export"`
	Render     RenderConfig       `yaml:"render" mapstructure:"render"`
	Speeds     map[string]float64 `yaml:"speeds" mapstructure:"speeds"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OSMConfig configures the Nominatim and Overpass clients.
type OSMConfig struct {
	NominatimURL   string  `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	OverpassURL    string  `yaml:"overpass_url" mapstructure:"overpass_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RetryAttempts  int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// CacheConfig configures the on-disk OSM response cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// CentralityConfig tunes both centrality strategies.
type CentralityConfig struct {
	Concurrency    int   `yaml:"concurrency" mapstructure:"concurrency"`
	Seed           int64 `yaml:"seed" mapstructure:"seed"`
	MaxStallRounds int   `yaml:"max_stall_rounds" mapstructure:"max_stall_rounds"`
}

// ExportConfig selects extra output formats and the optional PostGIS sink.
type ExportConfig struct {
	Formats      []string `yaml:"formats" mapstructure:"formats"`
	PostGISURL   string   `yaml:"postgis_url" mapstructure:"postgis_url"`
	PostGISTable string   `yaml:"postgis_table" mapstructure:"postgis_table"`
}

// RenderConfig sizes the PNG map.
type RenderConfig struct {
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`
}

// DefaultSpeeds is the highway class to km/h table used to impute missing
// maxspeed tags when routing by travel time.
func DefaultSpeeds() map[string]float64 {
	return map[string]float64{
		"motorway":      100,
		"motorroad":     90,
		"trunk":         85,
		"primary":       65,
		"secondary":     60,
		"residential":   30,
		"tertiary":      50,
		"living_street": 10,
		"service":       20,
		"road":          20,
		"track":         15,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CENTRALITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("osm.nominatim_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("osm.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("osm.user_agent", "betweenness-centrality/1.0")
	v.SetDefault("osm.timeout_secs", 180)
	v.SetDefault("osm.rate_limit", 1.0)
	v.SetDefault("osm.retry_attempts", 3)
	v.SetDefault("osm.retry_backoff_ms", 1000)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", ".cache/osm.db")
	v.SetDefault("cache.ttl_hours", 24*7)
	v.SetDefault("centrality.concurrency", runtime.NumCPU())
	v.SetDefault("centrality.seed", 0)
	v.SetDefault("centrality.max_stall_rounds", 50)
	v.SetDefault("export.formats", []string{})
	v.SetDefault("export.postgis_table", "public.road_centrality")
	v.SetDefault("render.width", 1200)
	v.SetDefault("render.height", 1000)
	v.SetDefault("speeds", DefaultSpeeds())

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	// Zero means one worker per CPU.
	if c.Centrality.Concurrency < 0 {
		return eris.Errorf("config: centrality.concurrency must be >= 0, got %d", c.Centrality.Concurrency)
	}
	if c.Centrality.MaxStallRounds < 0 {
		return eris.Errorf("config: centrality.max_stall_rounds must be >= 0, got %d", c.Centrality.MaxStallRounds)
	}
	if c.Render.Width < 100 || c.Render.Height < 100 {
		return eris.Errorf("config: render size %dx%d too small", c.Render.Width, c.Render.Height)
	}
	for hwy, kph := range c.Speeds {
		if kph <= 0 {
			return eris.Errorf("config: speed for %q must be positive", hwy)
		}
	}
	for _, f := range c.Export.Formats {
		switch f {
		case "geojson", "shp", "xlsx":
		default:
			return eris.Errorf("config: unknown export format %q", f)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
