package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "HEARINGS"

type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UpstreamConfig struct {
	VideoURL   string        `mapstructure:"video_url"`
	BookingURL string        `mapstructure:"booking_url"`
	UserURL    string        `mapstructure:"user_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type HubConfig struct {
	AdminAlias       string        `mapstructure:"admin_alias"`
	ProfileCacheSize int           `mapstructure:"profile_cache_size"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	RateLimit        int           `mapstructure:"rate_limit"`
	RateInterval     time.Duration `mapstructure:"rate_interval"`
	MaxFanout        int           `mapstructure:"max_fanout"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Mode       string         `mapstructure:"mode"`
	Port       int            `mapstructure:"port"`
	StaticPath string         `mapstructure:"static_path"`
	ReadLimit  int64          `mapstructure:"read_limit"`
	PingPeriod time.Duration  `mapstructure:"ping_period"`
	Secret     string         `mapstructure:"secret"`
	LogLevel   string         `mapstructure:"log_level"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Upstream   UpstreamConfig `mapstructure:"upstream"`
	Hub        HubConfig      `mapstructure:"hub"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "4h")

	v.SetDefault("upstream.video_url", "http://localhost:5001")
	v.SetDefault("upstream.booking_url", "http://localhost:5002")
	v.SetDefault("upstream.user_url", "http://localhost:5003")
	v.SetDefault("upstream.timeout", "10s")

	v.SetDefault("hub.admin_alias", "Admin")
	v.SetDefault("hub.profile_cache_size", 1024)
	v.SetDefault("hub.send_buffer", 32)
	v.SetDefault("hub.rate_limit", 20)
	v.SetDefault("hub.rate_interval", "1s")
	v.SetDefault("hub.max_fanout", 0)

	v.SetDefault("metrics.path", "/metrics")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then HEARINGS_*
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg(".env could not be loaded")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return load(fmt.Sprintf("config/config.%s.yaml", env))
}

func load(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("cache", cfg.Cache.Backend).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
