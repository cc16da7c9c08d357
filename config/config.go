package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DefaultPort      = 5000
	DefaultLeagueID  = 783411
	DefaultBaseURL   = "https://fantasy.premierleague.com/api"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Environment     string `mapstructure:"environment"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	IdleTimeout     string `mapstructure:"idle_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type UpstreamConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	// Timeout of zero leaves the transport default in place.
	Timeout string `mapstructure:"timeout"`
}

type LeagueConfig struct {
	ID int `mapstructure:"id"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
}

type MetricsConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	League   LeagueConfig   `mapstructure:"league"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Load reads config.yaml from ./config or the working directory, overlays
// environment variables and validates the result.
func Load() (*Config, error) {
	return load("./config", ".")
}

// LoadFrom is Load restricted to a single directory.
func LoadFrom(dir string) (*Config, error) {
	return load(dir)
}

func load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Hosting platforms hand the port over as plain PORT.
	if err := v.BindEnv("server.port", "PORT", "SERVER_PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("upstream.base_url", DefaultBaseURL)
	v.SetDefault("upstream.user_agent", DefaultUserAgent)
	v.SetDefault("upstream.timeout", "0s")
	v.SetDefault("league.id", DefaultLeagueID)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.buffer_size", 1024)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server, validation.By(func(value interface{}) error {
			sc, ok := value.(ServerConfig)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a ServerConfig")
			}
			return validation.ValidateStruct(&sc,
				validation.Field(&sc.Host, is.Host),
				validation.Field(&sc.Port, validation.Required, validation.Min(1), validation.Max(65535)),
				validation.Field(&sc.Environment,
					validation.Required,
					validation.In(EnvDev, EnvStaging, EnvProd),
				),
				validation.Field(&sc.ReadTimeout, validation.Required, validation.By(validateDuration)),
				validation.Field(&sc.WriteTimeout, validation.Required, validation.By(validateDuration)),
				validation.Field(&sc.IdleTimeout, validation.Required, validation.By(validateDuration)),
				validation.Field(&sc.ShutdownTimeout, validation.Required, validation.By(validateDuration)),
			)
		})),
		validation.Field(&c.Upstream, validation.By(func(value interface{}) error {
			uc, ok := value.(UpstreamConfig)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be an UpstreamConfig")
			}
			return validation.ValidateStruct(&uc,
				validation.Field(&uc.BaseURL, validation.Required, validation.By(validateBaseURL)),
				validation.Field(&uc.UserAgent, validation.Required),
				validation.Field(&uc.Timeout, validation.Required, validation.By(validateDuration)),
			)
		})),
		validation.Field(&c.League, validation.By(func(value interface{}) error {
			lc, ok := value.(LeagueConfig)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a LeagueConfig")
			}
			return validation.ValidateStruct(&lc,
				validation.Field(&lc.ID, validation.Required, validation.Min(1)),
			)
		})),
		validation.Field(&c.Logging, validation.By(func(value interface{}) error {
			lc, ok := value.(LoggingConfig)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
			}
			return validation.ValidateStruct(&lc,
				validation.Field(&lc.Level,
					validation.Required,
					validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
				),
			)
		})),
		validation.Field(&c.Metrics, validation.By(func(value interface{}) error {
			mc, ok := value.(MetricsConfig)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
			}
			return validation.ValidateStruct(&mc,
				validation.Field(&mc.BufferSize, validation.Required, validation.Min(1)),
			)
		})),
	)
}

// Duration parses a validated duration string. Invalid input yields zero.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}
	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validateBaseURL(value interface{}) error {
	baseURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
