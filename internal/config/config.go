package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/masslots/parcelviz/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Grid   GridConfig   `yaml:"grid" mapstructure:"grid"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// DataConfig configures shapefile attribute mapping.
type DataConfig struct {
	ValueField string `yaml:"value_field" mapstructure:"value_field"`
	IDField    string `yaml:"id_field" mapstructure:"id_field"`
	GTFSDir    string `yaml:"gtfs_dir" mapstructure:"gtfs_dir"`
}

// GridConfig configures the aggregation grid.
type GridConfig struct {
	CellSizeMeters float64 `yaml:"cell_size_meters" mapstructure:"cell_size_meters"`
}

// RenderConfig configures map output.
type RenderConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Tiles     string `yaml:"tiles" mapstructure:"tiles"`
	Zoom      int    `yaml:"zoom" mapstructure:"zoom"`
}

// FetchConfig configures dataset downloads.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARCELVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "parcelviz.db")
	v.SetDefault("data.value_field", "TOTAL_VAL")
	v.SetDefault("data.id_field", "LOC_ID")
	v.SetDefault("data.gtfs_dir", "data/gtfs")
	v.SetDefault("grid.cell_size_meters", 402.25)
	v.SetDefault("render.output_dir", "maps")
	v.SetDefault("render.tiles", "cartodb-positron")
	v.SetDefault("render.zoom", 12)
	v.SetDefault("fetch.timeout_secs", 300)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.cache_dir", "data/cache")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Grid.CellSizeMeters <= 0 {
		return eris.Errorf("config: grid.cell_size_meters must be positive, got %v", c.Grid.CellSizeMeters)
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Data.ValueField == "" {
		return eris.New("config: data.value_field must be set")
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
