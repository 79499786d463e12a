package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application settings, populated from environment variables.
type Config struct {
	CountriesPath   string
	EarthquakesPath string

	// Country feature properties.
	IDProperties []string
	NameProperty string

	// UseIndex enables the quadtree candidate index in the filter engine.
	UseIndex bool

	MetricsAddr string
	LogLevel    string
	LogFormat   string
	LogFile     string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first if present; real
// environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	useIndex, err := parseBool("QUAKEMAP_INDEX", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CountriesPath:   envOrDefault("QUAKEMAP_COUNTRIES", filepath.Join("data", "countries.geojson")),
		EarthquakesPath: envOrDefault("QUAKEMAP_EARTHQUAKES", filepath.Join("data", "earthquakes.geojson")),
		IDProperties:    parseList(envOrDefault("QUAKEMAP_ID_PROPERTIES", "ISO_A3,ADM0_A3,ISO_A3_EH")),
		NameProperty:    envOrDefault("QUAKEMAP_NAME_PROPERTY", "ADMIN"),
		UseIndex:        useIndex,
		MetricsAddr:     os.Getenv("QUAKEMAP_METRICS_ADDR"),
		LogLevel:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		LogFile:         envOrDefault("QUAKEMAP_LOG_FILE", filepath.Join(os.TempDir(), "quakemap.log")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that may also be changed by command-line flags.
func (c *Config) Validate() error {
	if c.CountriesPath == "" {
		return errors.New("QUAKEMAP_COUNTRIES is required")
	}
	if c.EarthquakesPath == "" {
		return errors.New("QUAKEMAP_EARTHQUAKES is required")
	}
	if len(c.IDProperties) == 0 {
		return errors.New("QUAKEMAP_ID_PROPERTIES must name at least one property")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
