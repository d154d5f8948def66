// Package config loads the configuration from a YAML or TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/forecast"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration of the analytics engine.
type Config struct {
	API      API                  `yaml:"api" toml:"api"`
	Log      Log                  `yaml:"log" toml:"log"`
	Database Database             `yaml:"database" toml:"database"`
	Schedule allocation.CronSpecs `yaml:"schedule" toml:"schedule"`
	Forecast forecast.Options     `yaml:"forecast" toml:"forecast"`
	Alerts   Alerts               `yaml:"alerts" toml:"alerts"`
}

// API configures the HTTP server.
type API struct {
	URL              string   `yaml:"url" toml:"url"`                               // External URL of the API, used for links
	Listen           string   `yaml:"listen" toml:"listen"`                         // Address the server listens on
	GinMode          string   `yaml:"gin_mode" toml:"gin_mode"`                     // "release", "debug" or "test"
	CORSAllowOrigins []string `yaml:"cors_allow_origins" toml:"cors_allow_origins"` // CORS is disabled when empty
	EnablePprof      bool     `yaml:"enable_pprof" toml:"enable_pprof"`
}

// Log configures the global logger.
type Log struct {
	Format string `yaml:"format" toml:"format"` // "human" or "json", human in debug mode if empty
	Level  string `yaml:"level" toml:"level"`
}

// Database configures the SQLite database.
type Database struct {
	Path string `yaml:"path" toml:"path"`
}

// Alerts configures budget alerts.
type Alerts struct {
	Language string `yaml:"language" toml:"language"` // BCP 47 tag for alert messages
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		API: API{
			URL:     "http://localhost:8080",
			Listen:  ":8080",
			GinMode: "release",
		},
		Log: Log{
			Level: "info",
		},
		Database: Database{
			Path: filepath.Join("data", "analytics.db"),
		},
		Schedule: allocation.DefaultCronSpecs,
		Forecast: forecast.Options{
			PeriodsToForecast: forecast.DefaultPeriods,
			Epsilon:           forecast.DefaultEpsilon,
		},
		Alerts: Alerts{
			Language: "en",
		},
	}
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result.
//
// Files ending in .toml are parsed as TOML, all others as YAML. An empty path
// only uses defaults and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}

		if strings.EqualFold(filepath.Ext(path), ".toml") {
			err = toml.Unmarshal(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overrides configuration values with environment variables.
func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"API_URL":        &c.API.URL,
		"LISTEN":         &c.API.Listen,
		"GIN_MODE":       &c.API.GinMode,
		"LOG_FORMAT":     &c.Log.Format,
		"LOG_LEVEL":      &c.Log.Level,
		"DB_PATH":        &c.Database.Path,
		"CRON_DAILY":     &c.Schedule.Daily,
		"CRON_WEEKLY":    &c.Schedule.Weekly,
		"CRON_MONTHLY":   &c.Schedule.Monthly,
		"ALERT_LANGUAGE": &c.Alerts.Language,
	}

	for name, target := range overrides {
		if v, ok := os.LookupEnv(name); ok {
			*target = v
		}
	}

	if v, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		c.API.CORSAllowOrigins = strings.Fields(v)
	}

	if v, ok := os.LookupEnv("ENABLE_PPROF"); ok {
		c.API.EnablePprof = v == "true"
	}

	if v, ok := os.LookupEnv("FORECAST_PERIODS"); ok {
		periods, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_PERIODS must be a number: %w", err)
		}
		c.Forecast.PeriodsToForecast = periods
	}

	return nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.url must be an absolute URL, got %q", c.API.URL))
	}

	switch c.API.GinMode {
	case "release", "debug", "test":
	default:
		errs = append(errs, fmt.Errorf("api.gin_mode must be one of release, debug, test, got %q", c.API.GinMode))
	}

	switch c.Log.Format {
	case "", "human", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be human or json, got %q", c.Log.Format))
	}

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	if _, err := allocation.NewCronScheduler(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}

	if c.Forecast.PeriodsToForecast < 0 {
		errs = append(errs, fmt.Errorf("forecast.periods must not be negative, got %d", c.Forecast.PeriodsToForecast))
	}

	if _, err := language.Parse(c.Alerts.Language); err != nil {
		errs = append(errs, fmt.Errorf("alerts.language: %w", err))
	}

	return errors.Join(errs...)
}

// URL returns the parsed API URL. It must only be called on a validated
// configuration.
func (c Config) URL() *url.URL {
	u, _ := url.Parse(c.API.URL)
	return u
}

// Language returns the language for alert messages.
func (c Config) Language() language.Tag {
	return language.Make(c.Alerts.Language)
}
