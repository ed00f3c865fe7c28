package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Mapbox   MapboxConfig   `yaml:"mapbox" mapstructure:"mapbox"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Temporal TemporalConfig `yaml:"temporal" mapstructure:"temporal"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RenderConfig holds the remote headless-browser rendering endpoint settings.
type RenderConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MapboxConfig holds the geocoding API credentials.
type MapboxConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Country string `yaml:"country" mapstructure:"country"`
	Limit   int    `yaml:"limit" mapstructure:"limit"`
}

// GeocodeConfig configures the venue-coordinate resolver and its cache.
type GeocodeConfig struct {
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	StaleDays     int     `yaml:"stale_days" mapstructure:"stale_days"`
	BatchDelayMs  int     `yaml:"batch_delay_ms" mapstructure:"batch_delay_ms"`
}

// SourceConfig configures one external event-listing site.
type SourceConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	MaxPages     int    `yaml:"max_pages" mapstructure:"max_pages"`
	DefaultTime  string `yaml:"default_time" mapstructure:"default_time"`
	DefaultPrice string `yaml:"default_price" mapstructure:"default_price"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	Entrio    SourceConfig `yaml:"entrio" mapstructure:"entrio"`
	CroatiaHR SourceConfig `yaml:"croatiahr" mapstructure:"croatiahr"`
}

// ScrapeConfig configures shared scrape behavior.
type ScrapeConfig struct {
	DetailSampleRate  int `yaml:"detail_sample_rate" mapstructure:"detail_sample_rate"`
	DetailDelayMs     int `yaml:"detail_delay_ms" mapstructure:"detail_delay_ms"`
	MaxConcurrent     int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	SourceTimeoutMins int `yaml:"source_timeout_mins" mapstructure:"source_timeout_mins"`
}

// ScheduleConfig configures the in-process timer triggers.
type ScheduleConfig struct {
	DailyHour      int `yaml:"daily_hour" mapstructure:"daily_hour"`
	DailyMaxPages  int `yaml:"daily_max_pages" mapstructure:"daily_max_pages"`
	HourlyMaxPages int `yaml:"hourly_max_pages" mapstructure:"hourly_max_pages"`
}

// TemporalConfig holds the task-queue trigger settings.
type TemporalConfig struct {
	HostPort  string `yaml:"host_port" mapstructure:"host_port"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	TaskQueue string `yaml:"task_queue" mapstructure:"task_queue"`
}

// ServerConfig configures the HTTP trigger server.
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
	v.SetEnvPrefix("EVENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "events.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("render.base_url", "http://localhost:3000")
	v.SetDefault("render.timeout_secs", 60)
	v.SetDefault("mapbox.base_url", "https://api.mapbox.com")
	v.SetDefault("mapbox.country", "hr")
	v.SetDefault("mapbox.limit", 3)
	v.SetDefault("geocode.min_confidence", 0.5)
	v.SetDefault("geocode.stale_days", 30)
	v.SetDefault("geocode.batch_delay_ms", 300)
	v.SetDefault("sources.entrio.base_url", "https://www.entrio.hr")
	v.SetDefault("sources.entrio.max_pages", 5)
	v.SetDefault("sources.entrio.default_time", "20:00")
	v.SetDefault("sources.entrio.default_price", "Kontaktirajte organizatora")
	v.SetDefault("sources.croatiahr.base_url", "https://croatia.hr")
	v.SetDefault("sources.croatiahr.max_pages", 5)
	v.SetDefault("sources.croatiahr.default_time", "09:00")
	v.SetDefault("sources.croatiahr.default_price", "Free")
	v.SetDefault("scrape.detail_sample_rate", 3)
	v.SetDefault("scrape.detail_delay_ms", 500)
	v.SetDefault("scrape.max_concurrent", 2)
	v.SetDefault("scrape.source_timeout_mins", 30)
	v.SetDefault("schedule.daily_hour", 3)
	v.SetDefault("schedule.daily_max_pages", 10)
	v.SetDefault("schedule.hourly_max_pages", 2)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "event-scrape")

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
