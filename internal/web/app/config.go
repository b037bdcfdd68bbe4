package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aussiebroadwan/tenantry/internal/web/store"
)

type Config struct {
	Port                 int           // HTTP server port (default: 8080)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	DatabaseFile         string        // Path to the SQLite database file (default: tenantry.db)
	PepperFile           string        // Path to the password pepper (default: pepper)
	SessionSecret        string        // HS256 key for session cookies; generated per process when empty
	SessionTTL           time.Duration // Session lifetime (default: 24h)
	BaseDomain           string        // Tenants are also reachable as <subdomain>.<base_domain> (default: localhost)
	NATSURL              string        // Optional: publish app events to NATS when set
	NATSSubject          string        // Subject prefix for published events (default: tenantry.events)
	EventRetention       time.Duration // How long app events are kept (default: 90 days)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	PerPage              int           // Listing page size (default: 25)
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool { return c.Env == "prod" }

var defaults = map[string]any{
	"port":                  8080,
	"env":                   "dev",
	"log_level":             "info",
	"log_format":            "json",
	"database_file":         "tenantry.db",
	"pepper_file":           "pepper",
	"session_secret":        "",
	"session_ttl":           24 * time.Hour,
	"base_domain":           "localhost",
	"nats_url":              "",
	"nats_subject":          "tenantry.events",
	"event_retention":       2160 * time.Hour,
	"housekeeping_interval": time.Hour,
	"shutdown_grace_period": 10 * time.Second,
	"per_page":              store.DefaultPerPage,
}

// NewViper returns a viper instance with the defaults set, environment
// variables bound (PORT, LOG_LEVEL, ...) and tenantry.yaml read from the
// working directory when present.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	v.SetConfigName("tenantry")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// BindFlags binds each flag in fs to the key of the same name with dashes
// turned into underscores, so --database-file sets database_file.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

// LoadConfig reads Config from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:                 v.GetInt("port"),
		Env:                  v.GetString("env"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		DatabaseFile:         v.GetString("database_file"),
		PepperFile:           v.GetString("pepper_file"),
		SessionSecret:        v.GetString("session_secret"),
		SessionTTL:           v.GetDuration("session_ttl"),
		BaseDomain:           v.GetString("base_domain"),
		NATSURL:              v.GetString("nats_url"),
		NATSSubject:          v.GetString("nats_subject"),
		EventRetention:       v.GetDuration("event_retention"),
		HousekeepingInterval: v.GetDuration("housekeeping_interval"),
		ShutdownGracePeriod:  v.GetDuration("shutdown_grace_period"),
		PerPage:              v.GetInt("per_page"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("database_file is required"))
	}
	if c.PerPage < 1 {
		errs = append(errs, fmt.Errorf("per_page must be positive, got %d", c.PerPage))
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("session_secret must be at least 32 bytes"))
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		errs = append(errs, errors.New("nats_subject is required with nats_url"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
