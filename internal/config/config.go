package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds the configuration settings for the waypoint service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the API and monitoring server.
// - Provider: Geocoding provider settings.
// - Resolver: Resolution cascade settings.
// - Workers: The number of concurrent workers for the shipment worker.
// - Interval: The duration between shipment polls.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env      string         `mapstructure:"env"`         // Env is the current environment: local, development, production.
	Port     int            `mapstructure:"health_port"` // Port is the API and monitoring server port.
	Provider ProviderConfig `mapstructure:"provider"`    // Provider holds the geocoding provider settings.
	Resolver ResolverConfig `mapstructure:"resolver"`    // Resolver holds the cascade settings.
	Workers  int            `mapstructure:"workers"`     // The number of concurrent workers for processing shipments.
	Interval time.Duration  `mapstructure:"interval"`    // The duration between processing intervals.
	Database PostgresConfig `mapstructure:"postgres"`    // Database holds the postgres database configuration
}

// ProviderConfig selects and tunes the geocoding provider.
type ProviderConfig struct {
	Type      string `mapstructure:"type"`       // Type is one of nominatim, google, visicom.
	APIKey    string `mapstructure:"key"`        // APIKey is required by Google and Visicom.
	RateLimit int    `mapstructure:"rate_limit"` // RateLimit caps provider requests per second, 0 disables it.
	UserAgent string `mapstructure:"user_agent"` // UserAgent overrides the Nominatim User-Agent.
	BaseURL   string `mapstructure:"base_url"`   // BaseURL points Nominatim to a self-hosted instance.
}

// ResolverConfig tunes the resolution cascade.
type ResolverConfig struct {
	Delay       time.Duration `mapstructure:"delay"`        // Delay between two attempts of one resolution.
	Timeout     time.Duration `mapstructure:"timeout"`      // Timeout bounds one API resolution request.
	CountryCode string        `mapstructure:"country_code"` // CountryCode restricts provider results.
	CountryName string        `mapstructure:"country_name"` // CountryName is appended to structured queries.
	Language    language.Tag  `mapstructure:"-"`            // Language is the preferred result language.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// MustLoad loads the configuration from the environment, an optional .env file and an optional
// YAML file named by WAYPOINT_CONFIG_FILE. Environment variables win over the file.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := newViper()

	if file := os.Getenv("WAYPOINT_CONFIG_FILE"); file != "" {
		vpr.SetConfigFile(file)
		vpr.SetConfigType("yaml")
		if err := vpr.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	interval, err := time.ParseDuration(vpr.GetString("interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := strconv.Atoi(vpr.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(vpr.GetString("workers"))
	if err != nil || workers < 1 {
		panic("failed to parse workers from configuration, must be a positive integer")
	}

	rateLimit, err := strconv.Atoi(vpr.GetString("provider.rate_limit"))
	if err != nil {
		panic("failed to parse provider rate limit from configuration")
	}

	delay, err := time.ParseDuration(vpr.GetString("resolver.delay"))
	if err != nil {
		panic("failed to parse resolver delay from configuration")
	}

	timeout, err := time.ParseDuration(vpr.GetString("resolver.timeout"))
	if err != nil {
		panic("failed to parse resolver timeout from configuration")
	}

	lang, err := language.Parse(vpr.GetString("resolver.language"))
	if err != nil {
		panic("failed to parse resolver language from configuration")
	}

	return &Config{
		Env:  vpr.GetString("env"),
		Port: healthPort,
		Provider: ProviderConfig{
			Type:      vpr.GetString("provider.type"),
			APIKey:    vpr.GetString("provider.key"),
			RateLimit: rateLimit,
			UserAgent: vpr.GetString("provider.user_agent"),
			BaseURL:   vpr.GetString("provider.base_url"),
		},
		Resolver: ResolverConfig{
			Delay:       delay,
			Timeout:     timeout,
			CountryCode: vpr.GetString("resolver.country_code"),
			CountryName: vpr.GetString("resolver.country_name"),
			Language:    lang,
		},
		Workers:  workers,
		Interval: interval,
		Database: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Name:     vpr.GetString("postgres.db_name"),
		},
	}
}

// newViper returns a viper instance with defaults and environment bindings.
// Keys map to WAYPOINT_ variables with dots replaced by underscores, so
// provider.rate_limit is read from WAYPOINT_PROVIDER_RATE_LIMIT. Database
// settings keep their DB_ names.
func newViper() *viper.Viper {
	vpr := viper.New()

	vpr.SetDefault("env", "production")
	vpr.SetDefault("health_port", "8080")
	vpr.SetDefault("workers", "10")
	vpr.SetDefault("interval", "10m")
	vpr.SetDefault("provider.type", "nominatim")
	vpr.SetDefault("provider.key", "")
	vpr.SetDefault("provider.rate_limit", "1")
	vpr.SetDefault("provider.user_agent", "")
	vpr.SetDefault("provider.base_url", "")
	vpr.SetDefault("resolver.delay", "1s")
	vpr.SetDefault("resolver.timeout", "30s")
	vpr.SetDefault("resolver.country_code", "in")
	vpr.SetDefault("resolver.country_name", "India")
	vpr.SetDefault("resolver.language", "en")
	vpr.SetDefault("postgres.port", "5432")

	vpr.SetEnvPrefix("WAYPOINT")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	_ = vpr.BindEnv("postgres.host", "DB_HOST")
	_ = vpr.BindEnv("postgres.port", "DB_PORT")
	_ = vpr.BindEnv("postgres.user", "DB_USERNAME")
	_ = vpr.BindEnv("postgres.password", "DB_PASSWORD")
	_ = vpr.BindEnv("postgres.db_name", "DB_NAME")

	return vpr
}
